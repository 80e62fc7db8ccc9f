package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/validation"
)

type OccupantService struct {
	DB *gorm.DB
}

type RegisterOccupantInput struct {
	RoomID             string     `json:"room_id" validate:"required"`
	StudentName        string     `json:"student_name" validate:"required,max=100"`
	RegistrationNumber string     `json:"registration_number" validate:"required,max=64"`
	AccessNumber       string     `json:"access_number" validate:"required,max=64"`
	YearOfStudy        int        `json:"year_of_study" validate:"gte=1,lte=7"`
	Semester           int        `json:"semester" validate:"gte=1,lte=3"`
	CheckInDate        *time.Time `json:"check_in_date"`
}

func (in *RegisterOccupantInput) normalize() {
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	in.AccessNumber = strings.TrimSpace(in.AccessNumber)
}

// Register places a student in a room visible to sc. The active-registration
// check, the insert and the occupancy counter share one transaction; the
// partial unique index catches registrations that race past the check.
func (s *OccupantService) Register(ctx context.Context, sc scope.Scope, in RegisterOccupantInput) (models.RoomOccupant, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return models.RoomOccupant{}, err
	}
	checkIn := time.Now()
	if in.CheckInDate != nil {
		checkIn = *in.CheckInDate
	}
	occ := models.RoomOccupant{
		RoomID:             in.RoomID,
		StudentName:        in.StudentName,
		RegistrationNumber: in.RegistrationNumber,
		AccessNumber:       in.AccessNumber,
		YearOfStudy:        in.YearOfStudy,
		Semester:           in.Semester,
		CheckInDate:        &checkIn,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Scopes(sc.Rooms()).First(&room, "rooms.id = ?", in.RoomID).Error; err != nil {
			return notFound(err)
		}
		if room.Status == models.RoomMaintenance || room.Status == models.RoomClosed {
			return fmt.Errorf("%w: room is %s", ErrRoomUnavailable, room.Status)
		}

		var existing int64
		if err := tx.Model(&models.RoomOccupant{}).
			Where("registration_number = ? AND check_out_date IS NULL", in.RegistrationNumber).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateRegistration
		}

		if err := insertOccupant(tx, &occ); err != nil {
			return err
		}
		return occupySlot(tx, room)
	})
	if err != nil {
		return models.RoomOccupant{}, err
	}
	return occ, nil
}

// insertOccupant leaves uniqueness of active registrations to the partial
// unique index and reports a violation as ErrDuplicateRegistration.
func insertOccupant(tx *gorm.DB, occ *models.RoomOccupant) error {
	if err := tx.Create(occ).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("create occupant: %w", err)
	}
	return nil
}

// occupySlot increments the room counter only while below capacity.
func occupySlot(tx *gorm.DB, room models.Room) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND current_occupants < capacity", room.ID).
		Update("current_occupants", gorm.Expr("current_occupants + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomFull
	}
	if room.Status == models.RoomAvailable && room.CurrentOccupants+1 >= room.Capacity {
		return tx.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", models.RoomOccupied).Error
	}
	return nil
}

func releaseSlot(tx *gorm.DB, roomID string) error {
	if err := tx.Model(&models.Room{}).
		Where("id = ? AND current_occupants > 0", roomID).
		Update("current_occupants", gorm.Expr("current_occupants - 1")).Error; err != nil {
		return err
	}
	return tx.Model(&models.Room{}).
		Where("id = ? AND status = ? AND current_occupants < capacity", roomID, models.RoomOccupied).
		Update("status", models.RoomAvailable).Error
}

func (s *OccupantService) load(tx *gorm.DB, sc scope.Scope, id string) (models.RoomOccupant, error) {
	var occ models.RoomOccupant
	if err := tx.Scopes(sc.Occupants()).First(&occ, "room_occupants.id = ?", id).Error; err != nil {
		return occ, notFound(err)
	}
	return occ, nil
}

// CheckOut stamps the check-out date and frees the room slot.
func (s *OccupantService) CheckOut(ctx context.Context, sc scope.Scope, id string) (models.RoomOccupant, error) {
	var occ models.RoomOccupant
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		occ, err = s.load(tx, sc, id)
		if err != nil {
			return err
		}
		if !occ.Active() {
			return ErrAlreadyCheckedOut
		}
		now := time.Now()
		result := tx.Model(&models.RoomOccupant{}).
			Where("id = ? AND check_out_date IS NULL", occ.ID).
			Update("check_out_date", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyCheckedOut
		}
		occ.CheckOutDate = &now
		return releaseSlot(tx, occ.RoomID)
	})
	return occ, err
}

// Delete removes the occupant row, freeing the slot when it was active.
func (s *OccupantService) Delete(ctx context.Context, sc scope.Scope, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occ, err := s.load(tx, sc, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.RoomOccupant{}, "id = ?", occ.ID).Error; err != nil {
			return err
		}
		if occ.Active() {
			return releaseSlot(tx, occ.RoomID)
		}
		return nil
	})
}

type OccupantFilter struct {
	RoomID     string
	ActiveOnly bool
}

func (s *OccupantService) List(ctx context.Context, sc scope.Scope, f OccupantFilter) ([]models.RoomOccupant, error) {
	q := s.DB.WithContext(ctx).Scopes(sc.Occupants()).Order("created_at DESC")
	if f.RoomID != "" {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.ActiveOnly {
		q = q.Where("check_out_date IS NULL")
	}
	var out []models.RoomOccupant
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type ImportFailure struct {
	Row                int    `json:"row"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Error              string `json:"error"`
}

type ImportResult struct {
	TotalRows int             `json:"total_rows"`
	Inserted  int             `json:"inserted"`
	Failed    int             `json:"failed"`
	Errors    []ImportFailure `json:"errors"`
}

// ErrInvalidCSV reports a file that cannot be read as an occupant sheet.
var ErrInvalidCSV = errors.New("invalid csv")

// Import registers one occupant per CSV row. Header columns (any case):
// student_name, registration_number, access_number, year_of_study, semester,
// and either room_id or hostel_name plus room_number. Each row commits on
// its own; failures are reported per row.
func (s *OccupantService) Import(ctx context.Context, sc scope.Scope, data []byte) (ImportResult, error) {
	reader, headerIdx, err := newCSVReader(data)
	if err != nil {
		return ImportResult{}, err
	}
	for _, key := range []string{"student_name", "registration_number", "access_number"} {
		if _, ok := headerIdx[key]; !ok {
			return ImportResult{}, fmt.Errorf("%w: missing header column: %s", ErrInvalidCSV, key)
		}
	}
	_, hasRoomID := headerIdx["room_id"]
	_, hasRoomNumber := headerIdx["room_number"]
	_, hasHostel := headerIdx["hostel_name"]
	if !hasRoomID && !(hasRoomNumber && hasHostel) {
		return ImportResult{}, fmt.Errorf("%w: missing header column: room_id or hostel_name+room_number", ErrInvalidCSV)
	}

	getVal := func(record []string, key string) string {
		idx, ok := headerIdx[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	res := ImportResult{Errors: []ImportFailure{}}
	roomCache := map[string]string{}
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			res.Errors = append(res.Errors, ImportFailure{Row: rowNum, Error: fmt.Sprintf("failed to read row: %v", err)})
			continue
		}
		res.TotalRows++

		in := RegisterOccupantInput{
			RoomID:             getVal(row, "room_id"),
			StudentName:        getVal(row, "student_name"),
			RegistrationNumber: getVal(row, "registration_number"),
			AccessNumber:       getVal(row, "access_number"),
			YearOfStudy:        atoiDefault(getVal(row, "year_of_study"), 1),
			Semester:           atoiDefault(getVal(row, "semester"), 1),
		}
		fail := func(msg string) {
			res.Errors = append(res.Errors, ImportFailure{Row: rowNum, RegistrationNumber: in.RegistrationNumber, Error: msg})
		}

		if in.RoomID == "" {
			hostelName := getVal(row, "hostel_name")
			roomNumber := getVal(row, "room_number")
			key := strings.ToLower(hostelName) + "/" + strings.ToLower(roomNumber)
			id, ok := roomCache[key]
			if !ok {
				var room models.Room
				err := s.DB.WithContext(ctx).
					Scopes(sc.Rooms()).
					Joins("JOIN hostels ON hostels.id = rooms.hostel_id").
					Where("LOWER(hostels.name) = ? AND LOWER(rooms.room_number) = ?", strings.ToLower(hostelName), strings.ToLower(roomNumber)).
					First(&room).Error
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						fail(fmt.Sprintf("room '%s' in hostel '%s' not found", roomNumber, hostelName))
						continue
					}
					return res, err
				}
				id = room.ID
				roomCache[key] = id
			}
			in.RoomID = id
		}

		if _, err := s.Register(ctx, sc, in); err != nil {
			if verr, ok := validation.As(err); ok {
				fail(verr.Error())
				continue
			}
			if errors.Is(err, ErrNotFound) {
				fail("room not found")
				continue
			}
			fail(err.Error())
			continue
		}
		res.Inserted++
	}
	res.Failed = len(res.Errors)
	return res, nil
}

func atoiDefault(s string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return fallback
}

// newCSVReader normalises line endings, detects a semicolon delimiter and
// consumes the header row, returning lower-cased column positions.
func newCSVReader(data []byte) (*csv.Reader, map[string]int, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}
	data = bytes.ReplaceAll(data, []byte{'\r', '\n'}, []byte{'\n'})
	data = bytes.ReplaceAll(data, []byte{'\r'}, []byte{'\n'})
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	firstLineEnd := bytes.IndexByte(data, '\n')
	if firstLineEnd == -1 {
		firstLineEnd = len(data)
	}
	firstLine := data[:firstLineEnd]

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	if bytes.Contains(firstLine, []byte{';'}) && !bytes.Contains(firstLine, []byte{','}) {
		r.Comma = ';'
	}

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read header", ErrInvalidCSV)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.Trim(strings.TrimSpace(col), "\"'"))
		if key != "" {
			idx[key] = i
		}
	}
	return r, idx, nil
}
