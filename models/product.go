package models

import "time"

type Condition string

const (
	New  Condition = "new"
	Used Condition = "used"
)

func ValidCondition(condition string) bool {
	switch Condition(condition) {
	case New, Used:
		return true
	}
	return false
}

type Product struct {
	CreatedAt     time.Time `json:"created_at"`
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	Brand         string    `json:"brand"`
	ProductDetail string    `json:"product_detail"`
	Condition     string    `json:"condition"`
	CategoryId    string    `json:"category_id"`
	Images        []string  `json:"images"`
	Price         int       `json:"price"`
}

type ProductList struct {
	Data       []Product  `json:"data"`
	TotalRows  int        `json:"total_rows"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	TotalItem int32 `json:"total_item"`
	TotalPage int   `json:"total_page"`
}

type Stock struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type ProductDetail struct {
	Product
	CategoryName string   `json:"category_name"`
	Sizes        []string `json:"size"`
	Stock        []Stock  `json:"stock"`
}

type NewImage struct {
	Name     string `json:"name"`
	ImageUrl string `json:"image_url"`
}

type Image struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	ImageUrl string `json:"image_url"`
}

type CreateProductRequest struct {
	Title         string     `json:"title"`
	Brand         string     `json:"brand"`
	ProductDetail string     `json:"product_detail"`
	Condition     string     `json:"condition"`
	CategoryId    string     `json:"category_id"`
	Images        []NewImage `json:"images"`
	Price         int        `json:"price"`
}

type UpdateProductRequest struct {
	Id            string  `json:"id"`
	Title         string  `json:"title"`
	Brand         string  `json:"brand"`
	ProductDetail string  `json:"product_detail"`
	Condition     string  `json:"condition"`
	CategoryId    string  `json:"category_id"`
	Images        []Image `json:"images"`
	Stock         []Stock `json:"stock"`
	Price         int     `json:"price"`
}
