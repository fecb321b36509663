package controllers

import (
	"catalogapi/models"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v8"
	"gotest.tools/assert"
)

func TestAuthenticate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.Equal(t, nil, err)

	api := NewAPI()
	api.Db = db

	// nil request (400)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var genericResp GenericResponse

	req, _ := http.NewRequest("POST", "", nil)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", genericResp.Message)

	// bad request (400)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload := parsePayload(models.AuthRequest{})
	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing-email-or-password", genericResp.Message)

	// err select (500)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	reqAuth := models.AuthRequest{
		Email:    "admin@catalog.test",
		Password: "test1234",
	}
	payload = parsePayload(reqAuth)

	dbMock.ExpectQuery("SELECT id.*").WillReturnError(errors.New("err-select"))

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "err-select", genericResp.Message)

	// unknown email (401)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload = parsePayload(reqAuth)

	label := []string{"id", "email", "name", "role", "created_at", "updated_at", "is_correct"}

	dbMock.ExpectQuery("SELECT id.*").WillReturnRows(sqlmock.NewRows(label))

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid-email-or-password", genericResp.Message)

	// wrong password (401)
	mockUUID := "d234578a-ee95-4dab-b5ed-e0a83b03bbfc"
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload = parsePayload(reqAuth)

	dbMock.ExpectQuery("SELECT id.*").
		WillReturnRows(sqlmock.NewRows(label).
			AddRow(mockUUID, reqAuth.Email, "admin", models.Admin, time.Now(), time.Now(), false))

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid-email-or-password", genericResp.Message)

	// err storing session (500)
	redisDB, redisMock := redismock.NewClientMock()
	api.Redis = redisDB

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload = parsePayload(reqAuth)

	dbMock.ExpectQuery("SELECT id.*").
		WillReturnRows(sqlmock.NewRows(label).
			AddRow(mockUUID, reqAuth.Email, "admin", models.Admin, time.Now(), time.Now(), true))

	redisMock.ExpectGet("auth:" + reqAuth.Email).RedisNil()
	redisMock.Regexp().ExpectSet("[.]", "[.]", 30*time.Minute).SetErr(errors.New("err-set"))

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "err-set", genericResp.Message)

	// 200
	redisDB, redisMock = redismock.NewClientMock()
	api.Redis = redisDB

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload = parsePayload(reqAuth)

	dbMock.ExpectQuery("SELECT id.*").
		WillReturnRows(sqlmock.NewRows(label).
			AddRow(mockUUID, reqAuth.Email, "admin", models.Admin, time.Now(), time.Now(), true))

	redisMock.ExpectGet("auth:" + reqAuth.Email).RedisNil()
	redisMock.Regexp().ExpectSet("[.]", "[.]", 30*time.Minute).SetVal("OK")
	redisMock.Regexp().ExpectSet("[.]", "[.]", 30*time.Minute).SetVal("OK")
	redisMock.Regexp().ExpectSet("[.]", "[.]", 30*time.Minute).SetVal("OK")

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.Authenticate(c)

	var authResp models.AuthResponse
	err = json.NewDecoder(w.Body).Decode(&authResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mockUUID, authResp.User.Id)
	assert.Equal(t, string(models.Admin), authResp.User.Role)
	assert.Equal(t, true, len(authResp.Token) > 0)
}
