package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
)

func occupantBody(roomID, reg string) gin.H {
	return gin.H{
		"room_id":             roomID,
		"student_name":        "Ann Namutebi",
		"registration_number": reg,
		"access_number":       "A" + reg,
		"year_of_study":       2,
		"semester":            1,
	}
}

func TestOccupantRegistration(t *testing.T) {
	e := newEnv(t)
	s := newStaff(t, e)
	h := createHostel(t, e, s.femaleTok, "Mary Stuart", models.HostelFemale)
	room := createRoom(t, e, s.femaleTok, h.ID, "12", 2)

	w := e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, occupantBody(room.ID, "2021/BSC/001"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var occ models.RoomOccupant
	decode(t, w, &occ)

	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, occupantBody(room.ID, "2021/BSC/001"))
	require.Equal(t, http.StatusConflict, w.Code)
	msg, _ := errorBody(t, w)
	assert.Equal(t, services.ErrDuplicateRegistration.Error(), msg)

	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.maleTok, occupantBody(room.ID, "2021/BSC/002"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, occupantBody(room.ID, "2021/BSC/002")).Code)
	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, occupantBody(room.ID, "2021/BSC/003"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/occupants/"+occ.ID+"/checkout", s.femaleTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/v1/occupants/"+occ.ID+"/checkout", s.femaleTok, nil).Code)

	// a checked-out registration number can be used again
	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, occupantBody(room.ID, "2021/BSC/001"))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var list struct {
		Data []models.RoomOccupant `json:"data"`
	}
	w = e.do(t, http.MethodGet, "/api/v1/occupants?active=true&room_id="+room.ID, s.femaleTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list.Data, 2)

	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.femaleTok, gin.H{"room_id": room.ID, "year_of_study": 9, "semester": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	_, fields := errorBody(t, w)
	assert.Equal(t, "Student name is required", fields["student_name"])
	assert.Contains(t, fields, "year_of_study")

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodDelete, "/api/v1/occupants/"+occ.ID, s.femaleTok, nil).Code)
}

func upload(t *testing.T, e *testEnv, tok, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/occupants/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestOccupantImport(t *testing.T) {
	e := newEnv(t)
	s := newStaff(t, e)
	h := createHostel(t, e, s.maleTok, "Nkrumah", models.HostelMale)
	room := createRoom(t, e, s.maleTok, h.ID, "101", 3)

	sheet := "student_name,registration_number,access_number,year_of_study,semester,room_id\n" +
		"Ben Okot,R1,A1,1,1," + room.ID + "\n" +
		"Cal Opio,R1,A2,1,1," + room.ID + "\n"
	w := upload(t, e, s.maleTok, "occupants.csv", sheet)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.ImportResult
	decode(t, w, &res)
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Failed)

	assert.Equal(t, http.StatusBadRequest, upload(t, e, s.maleTok, "occupants.xlsx", sheet).Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, e, s.maleTok, "empty.csv", "  ").Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, e, s.maleTok, "bad.csv", "a,b\n1,2\n").Code)
}

func TestOccupantRegistrationNeedsOpenRoom(t *testing.T) {
	e := newEnv(t)
	s := newStaff(t, e)
	h := createHostel(t, e, s.maleTok, "Nkrumah", models.HostelMale)
	room := createRoom(t, e, s.maleTok, h.ID, "7", 2)

	w := e.do(t, http.MethodPut, "/api/v1/rooms/"+room.ID, s.maleTok, gin.H{"status": models.RoomClosed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/v1/occupants", s.maleTok, occupantBody(room.ID, "2022/BA/010"))
	require.Equal(t, http.StatusConflict, w.Code)
	msg, _ := errorBody(t, w)
	assert.Contains(t, msg, services.ErrRoomUnavailable.Error())
}
