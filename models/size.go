package models

type SizeList struct {
	Data []string `json:"data"`
}
