package controllers

import (
	"catalogapi/models"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (api *API) GetSizes(c *gin.Context) {
	rows, err := api.Db.Query(`SELECT size FROM sizes ORDER BY size`)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer rows.Close()

	sizes := []string{}

	for rows.Next() {
		var size string
		if err := rows.Scan(&size); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		sizes = append(sizes, size)
	}

	c.JSON(http.StatusOK, models.SizeList{Data: sizes})
}
