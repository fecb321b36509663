package models

type Category struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type CategoryList struct {
	Data []Category `json:"data"`
}

type CreateCategoryRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}
