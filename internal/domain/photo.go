package domain

import "time"

// PhotoCategory is the closed set of subjects an inspection photo may document.
type PhotoCategory string

const (
	PhotoCompteurs       PhotoCategory = "compteurs"
	PhotoCles            PhotoCategory = "cles"
	PhotoPiecePrincipale PhotoCategory = "piece_principale"
	PhotoCuisine         PhotoCategory = "cuisine"
	PhotoSalleDeBain     PhotoCategory = "salle_de_bain"
	PhotoEquipement      PhotoCategory = "equipement"
	PhotoAutre           PhotoCategory = "autre"
)

// PhotoCategories lists every accepted category.
var PhotoCategories = []PhotoCategory{
	PhotoCompteurs,
	PhotoCles,
	PhotoPiecePrincipale,
	PhotoCuisine,
	PhotoSalleDeBain,
	PhotoEquipement,
	PhotoAutre,
}

// Valid reports whether c belongs to PhotoCategories.
func (c PhotoCategory) Valid() bool {
	for _, known := range PhotoCategories {
		if c == known {
			return true
		}
	}
	return false
}

// PhotoTypes maps each accepted content type, detected from the file bytes,
// to the extension used on disk.
var PhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Photo is an image attached to an inspection.
type Photo struct {
	ID           int64
	InspectionID int64
	Category     PhotoCategory
	Path         string
	MimeType     string
	Size         int64
	CreatedAt    time.Time
}
