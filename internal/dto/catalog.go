package dto

// CourseRequest creates or replaces a catalog course.
type CourseRequest struct {
	Term string `json:"term" validate:"required"`
	CourseInput
}

// UpsertGroupRequest stores the label of an exclusive group.
type UpsertGroupRequest struct {
	Term        string `json:"term" validate:"required"`
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"max=512"`
}

// ImportCatalogResponse summarises a catalog import.
type ImportCatalogResponse struct {
	Term     string   `json:"term"`
	Imported int      `json:"imported"`
	Groups   []string `json:"groups"`
}
