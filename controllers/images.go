package controllers

import (
	"encoding/base64"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Thin pass-throughs for the image search flow: the actual matching runs in
// an external service, these endpoints only normalize the bytes.

func (api *API) SearchImageUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, "missing-file")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Data(http.StatusOK, "image/png", contents)
}

func (api *API) SearchImage(c *gin.Context) {
	filedata := c.PostForm("filedata")
	if filedata == "" {
		sendError(c, http.StatusBadRequest, "missing-filedata")
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(filedata)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, "invalid-image-data")
		return
	}

	c.Data(http.StatusOK, "image/png", decoded)
}
