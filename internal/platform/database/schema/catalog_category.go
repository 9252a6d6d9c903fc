package schema

// CatalogCategoryTable represents the 'catalog.category' table
type CatalogCategoryTable struct {
	Table     string
	ID        string
	ParentID  string
	Name      string
	Slug      string
	Sort      string
	Image     string
	CreatedAt string
	UpdatedAt string
}

// CatalogCategory is the schema definition for catalog.category
var CatalogCategory = CatalogCategoryTable{
	Table:     "catalog.category",
	ID:        "id",
	ParentID:  "parentid",
	Name:      "name",
	Slug:      "slug",
	Sort:      "sort",
	Image:     "image",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CatalogCategoryTable) Columns() []string {
	return []string{t.ID, t.ParentID, t.Name, t.Slug, t.Sort, t.Image, t.CreatedAt, t.UpdatedAt}
}
