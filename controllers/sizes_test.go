package controllers

import (
	"catalogapi/models"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gotest.tools/assert"
)

func TestGetSizes(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.Equal(t, nil, err)

	api := NewAPI()
	api.Db = db

	var genericResp GenericResponse

	// err select (500)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	dbMock.ExpectQuery("SELECT size.*").WillReturnError(fmt.Errorf("err-select"))

	req, _ := http.NewRequest("GET", "", nil)
	c.Request = req
	api.GetSizes(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "err-select", genericResp.Message)

	// 200
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)

	dbMock.ExpectQuery("SELECT size.*").
		WillReturnRows(sqlmock.NewRows([]string{"size"}).AddRow("L").AddRow("M").AddRow("S"))

	req, _ = http.NewRequest("GET", "", nil)
	c.Request = req
	api.GetSizes(c)

	var resp models.SizeList
	err = json.NewDecoder(w.Body).Decode(&resp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, len(resp.Data))
	assert.Equal(t, "L", resp.Data[0])
}
