package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/ecurie/apps/api/echo"
	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
	"github.com/trezcool/ecurie/services/logger"
	"github.com/trezcool/ecurie/storage/database/inmem"
)

const testSecretKey = "test-secret"

var (
	// sessions on 2024-01-01 and 2024-01-03 are past, 2024-01-08 and 2024-01-10 are future
	testNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	admin    = training.Actor{ID: "admin-1", Role: training.RoleAdmin}
	trainer  = training.Actor{ID: "trainer-1", Role: training.RoleTrainer}
	trainer2 = training.Actor{ID: "trainer-2", Role: training.RoleTrainer}
	amy      = training.Actor{ID: "amy", Role: training.RoleTrainee}
	ben      = training.Actor{ID: "ben", Role: training.RoleTrainee}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "training class not found"}
)

func setup(t *testing.T) Server {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	repo := inmemdb.NewTrainingRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	training.InitValidators(validate, translator)

	conf := &core.Config{Env: "TEST", TestMode: true}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	return NewServer(&Options{
		TestMode:       true,
		DisableReqLogs: true,
		SecretKey:      testSecretKey,
		Logger:         logger,
		TrainingSvc:    training.NewServiceMock(repo, testNow),
		Validate:       validate,
		Translator:     translator,
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, actor training.Actor) string {
	token, err := GenerateToken(GetActorClaims(actor, "ecurie-test", time.Hour), testSecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshallClass(t *testing.T, rec *httptest.ResponseRecorder) training.TrainingClass {
	var tc training.TrainingClass
	if err := json.Unmarshal(rec.Body.Bytes(), &tc); err != nil {
		t.Fatalf("unmarshallClass(): %v; body %s", err, rec.Body.String())
	}
	return tc
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newClassBody(trainerID string, maxParticipants int) training.NewClass {
	return training.NewClass{
		Name:     "Dressage Basics",
		Type:     "Dressage",
		Level:    training.LevelBeginner,
		Location: "Arena 1",
		Price:    40,
		Trainer:  trainerID,
		Schedule: training.Schedule{
			StartDate:     training.NewDate(2024, 1, 1),
			EndDate:       training.NewDate(2024, 1, 14),
			RecurringDays: []string{"monday", "wednesday"},
			Time:          "09:00",
		},
		MaxParticipants: maxParticipants,
	}
}

// createClass stores a class through the API and returns it.
func createClass(t *testing.T, app Server, by training.Actor, nc training.NewClass) training.TrainingClass {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", getToken(t, by), marshallObj(t, nc))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createClass(): code = %d; body %s", rec.Code, rec.Body.String())
	}
	return unmarshallClass(t, rec)
}
