package domain

type CollectionVisibility string

const (
	VisibilityPublic   CollectionVisibility = "public"
	VisibilityPersonal CollectionVisibility = "personal"
)

func (v CollectionVisibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPersonal
}

type PlaylistCollection struct {
	Id         string               `json:"id"`
	Name       string               `json:"name"`
	Visibility CollectionVisibility `json:"visibility"`
	Songs      []Song               `json:"songs"`
	CreatedAt  int64                `json:"createdAt"`
	UpdatedAt  int64                `json:"updatedAt"`
}

// ExportFormatVersion is stamped on exported collection documents.
const ExportFormatVersion = "1"

// ExportedCollection is the export/import document for a single collection.
// It must round-trip without loss of song identity or ordering.
type ExportedCollection struct {
	FormatVersion string                 `json:"formatVersion"`
	Collection    ExportedCollectionBody `json:"collection"`
}

type ExportedCollectionBody struct {
	Name       string               `json:"name"`
	Visibility CollectionVisibility `json:"visibility"`
	Songs      []Song               `json:"songs"`
}
