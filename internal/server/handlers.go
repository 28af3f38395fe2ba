package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/model"
)

// stringify flattens a decoded JSON object into the string map the feature
// encoder consumes. Numbers arrive as float64; integral values are
// rendered without a decimal point so symptom flags stay "0"/"1".
func stringify(body map[string]any) map[string]string {
	out := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			if val {
				out[k] = "1"
			} else {
				out[k] = "0"
			}
		case nil:
			// leave absent so the encoder reports the missing field
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

func (s *Server) handlePredict(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	// The web client predicts for the signed-in user; absent an explicit
	// user_id the record is filed under the default account.
	userID := int64(1)
	if raw, ok := body["user_id"].(float64); ok && raw > 0 {
		userID = int64(raw)
	}

	pred, err := s.predictor.Predict(c.Request.Context(), userID, stringify(body))
	if err != nil {
		// Persistence failures keep their detail in the logs only; input
		// failures go back verbatim so the caller sees the offending field.
		if errors.Is(err, common.ErrStorage) {
			common.LogError(err, "prediction could not be persisted", common.Fields{"user_id": userID})
			err = common.NewUserError("Failed to save prediction", err)
		} else {
			common.LogError(err, "prediction failed", common.Fields{"user_id": userID})
		}
		var uerr *common.UserError
		if errors.As(err, &uerr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": uerr.UserMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pcos_risk":  pred.Risk,
		"confidence": pred.Confidence,
	})
}

// trackingResponse mirrors the stored record plus the derived
// presentation-only fields, which are recomputed on every read.
type trackingResponse struct {
	CreatedAt    time.Time       `json:"created_at"`
	PCOSRisk     model.RiskLevel `json:"pcos_risk"`
	Age          float64         `json:"age"`
	BMI          float64         `json:"bmi"`
	AMH          float64         `json:"amh"`
	FSHLH        float64         `json:"fshLh"`
	Confidence   float64         `json:"confidence"`
	Testosterone float64         `json:"testosterone"`
	CycleDays    int             `json:"cycle_days"`
	Progress     int             `json:"progress"`
}

func (s *Server) handleTracking(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	record, err := s.store.LatestPredictionByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No tracking data found"})
			return
		}
		common.LogError(err, "failed to load tracking data", common.Fields{"user_id": userID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, trackingResponse{
		Age:          record.Input.Age,
		BMI:          record.Input.BMI,
		AMH:          record.Input.AMH,
		FSHLH:        record.Input.FSHLH,
		PCOSRisk:     record.PCOSRisk,
		Confidence:   record.Confidence,
		CreatedAt:    record.CreatedAt,
		Testosterone: record.Testosterone(),
		CycleDays:    record.CycleDays(),
		Progress:     record.Progress(),
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	_, err := s.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
	case errors.Is(err, common.ErrDuplicateEntry):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	default:
		common.LogError(err, "registration failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   result.Token,
			"name":    result.Name,
			"email":   result.Email,
		})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, common.ErrMisconfigured):
		common.LogError(err, "login rejected: missing signing secret", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server misconfigured: Missing secret key"})
	default:
		common.LogError(err, "login failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func (s *Server) handleDietList(c *gin.Context) {
	diets, err := s.store.ListDietRecommendations(c.Request.Context())
	if err != nil {
		common.LogError(err, "failed to list diet recommendations", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if diets == nil {
		diets = []model.DietRecommendation{}
	}
	c.JSON(http.StatusOK, diets)
}

func (s *Server) handleWellnessList(c *gin.Context) {
	tips, err := s.store.ListWellnessTips(c.Request.Context())
	if err != nil {
		common.LogError(err, "failed to list wellness tips", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if tips == nil {
		tips = []model.WellnessTip{}
	}
	c.JSON(http.StatusOK, tips)
}

func (s *Server) handleHealthRecordList(c *gin.Context) {
	records, err := s.store.ListHealthRecords(c.Request.Context())
	if err != nil {
		common.LogError(err, "failed to list health records", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if records == nil {
		records = []model.HealthRecord{}
	}
	c.JSON(http.StatusOK, records)
}

type healthRecordRequest struct {
	Date        string   `json:"date"`
	Notes       string   `json:"notes"`
	Weight      *float64 `json:"weight"`
	CycleLength *int     `json:"cycleLength"`
	UserID      int64    `json:"user_id"`
}

func (s *Server) handleHealthRecordSave(c *gin.Context) {
	var req healthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	if req.UserID <= 0 {
		req.UserID = 1
	}

	record := &model.HealthRecord{
		UserID:      req.UserID,
		Date:        req.Date,
		Weight:      req.Weight,
		CycleLength: req.CycleLength,
		Notes:       req.Notes,
	}
	if err := s.store.SaveHealthRecord(c.Request.Context(), record); err != nil {
		common.LogError(err, "failed to save health record", common.Fields{"user_id": req.UserID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Health record saved"})
}

func (s *Server) handleDetect(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	result, err := s.predictor.DetectSymptoms(stringify(body))
	if err != nil {
		common.LogError(err, "symptom detection failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": result})
}
