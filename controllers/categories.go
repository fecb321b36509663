package controllers

import (
	"catalogapi/models"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

func (api *API) GetCategories(c *gin.Context) {
	rows, err := api.Db.Query(`SELECT id, title, type FROM categories ORDER BY title`)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer rows.Close()

	categories := []models.Category{}

	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.Id, &category.Title, &category.Type); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		categories = append(categories, category)
	}

	c.JSON(http.StatusOK, models.CategoryList{Data: categories})
}

func (api *API) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title == "" {
		sendError(c, http.StatusBadRequest, "missing-title")
		return
	}

	categoryId := uuid.Must(uuid.NewV4()).String()

	// title carries a unique constraint, duplicates surface as a conflict
	if _, err := api.Db.Exec(`INSERT INTO categories (id, title, type) VALUES ($1, $2, $3)`,
		categoryId, req.Title, req.Type); err != nil {
		log.Println(err)
		sendError(c, storageErrorCode(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category added", "id": categoryId})
}

func (api *API) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.FromString(id); err != nil {
		sendError(c, http.StatusBadRequest, "invalid-id")
		return
	}

	var exists bool
	if err := api.Db.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE category_id = $1)`, id).Scan(&exists); err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if exists {
		sendError(c, http.StatusConflict, "category-in-use")
		return
	}

	tag, err := api.Db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		log.Println(err)
		sendError(c, storageErrorCode(err), err.Error())
		return
	}

	if affected, _ := tag.RowsAffected(); affected == 0 {
		sendError(c, http.StatusNotFound, "category-not-found")
		return
	}

	c.JSON(http.StatusOK, genericOK)
}
