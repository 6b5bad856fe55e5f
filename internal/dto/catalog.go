package dto

// CategoryRequest creates or updates a menu category.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	Position int    `json:"position"`
}

// MenuItemRequest creates or updates a sellable dish.
type MenuItemRequest struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Price      int64  `json:"price" validate:"min=0"`
	ImageURI   string `json:"image_uri"`
	Available  *bool  `json:"available"`
}

// BranchRequest creates or updates a restaurant location.
type BranchRequest struct {
	Name      string `json:"name" validate:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	OpenHours string `json:"open_hours"`
}

// BannerRequest creates or updates a front-page banner.
type BannerRequest struct {
	Title    string `json:"title" validate:"required"`
	ImageURI string `json:"image_uri"`
	Active   *bool  `json:"active"`
	Position int    `json:"position"`
}

// BrandingRequest updates the site branding record.
type BrandingRequest struct {
	Name    string `json:"name" validate:"required"`
	LogoURI string `json:"logo_uri"`
}

// RotateManagerCodeRequest replaces the staff console unlock code.
type RotateManagerCodeRequest struct {
	CurrentCode string `json:"current_code" validate:"required"`
	NewCode     string `json:"new_code" validate:"required,min=4"`
}
