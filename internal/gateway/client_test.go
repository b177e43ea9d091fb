package gateway_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/plantinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperFunc adapts a function into an http.RoundTripper for faking
// transport-level failures.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "request timed out" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestLoginSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret1", body["password"])
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"user":    models.User{Username: "amrita", Email: "a@b.com", IsAdmin: true},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	sess, err := c.Login(context.Background(), "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", sess.Email)
	assert.Equal(t, "secret1", sess.CredentialSecret)
	assert.Equal(t, "amrita", sess.Username)
	assert.True(t, sess.IsAdmin)
}

func TestLoginRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")

	var authErr *gateway.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, gateway.AuthInvalid, authErr.Kind)
	assert.Equal(t, "Invalid credentials", authErr.Message)
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := gateway.New(srv.URL, nil, nil)
	_, err := c.Login(context.Background(), "a@b.com", "secret1")

	var authErr *gateway.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, gateway.AuthUnreachable, authErr.Kind)
	assert.True(t, gateway.Unreachable(err))
}

func TestLoginEmptyCredentials(t *testing.T) {
	c := gateway.New("http://example.invalid", nil, nil)
	_, err := c.Login(context.Background(), "", "")

	var authErr *gateway.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, gateway.AuthInvalid, authErr.Kind)
}

func TestIdentify(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/identify", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		assert.Equal(t, "hi", req.FormValue("language"))

		file, header, err := req.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "leaf.jpg", header.Filename)

		writeJSON(w, http.StatusOK, map[string]any{
			"id":         "entry-1",
			"plantName":  "Tulsi",
			"confidence": 0.94,
			"info":       map[string]string{"scientific_name": "Ocimum tenuiflorum"},
			"imageUrl":   "/uploads/leaf.jpg",
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	res, err := c.Identify(context.Background(), []byte("jpegbytes"), "leaf.jpg", "hi")
	require.NoError(t, err)

	assert.Equal(t, "entry-1", res.ID)
	assert.Equal(t, "Tulsi", res.PlantName)
	assert.Equal(t, 0.94, res.Confidence)
	assert.False(t, res.CreatedAt.IsZero())
	v, ok := res.Info.Get("scientific_name")
	require.True(t, ok)
	assert.Equal(t, "Ocimum tenuiflorum", v.Scalar())
}

func TestIdentifyEmptyImage(t *testing.T) {
	c := gateway.New("http://example.invalid", nil, nil)
	_, err := c.Identify(context.Background(), nil, "leaf.jpg", "en")

	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, gateway.RequestRejected, reqErr.Kind)
}

func TestTranslateEnglishSkipsNetwork(t *testing.T) {
	calls := 0
	httpClient := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("no network expected")
	})}
	c := gateway.New("http://example.invalid", httpClient, nil)

	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	got, ok := c.Translate(context.Background(), info, "en")
	assert.True(t, ok)
	assert.True(t, info.Equal(&got))
	assert.Zero(t, calls)
}

func TestTranslateSuccess(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/translate", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "hi", body["language"])
		writeJSON(w, http.StatusOK, map[string]string{"name": "नीम"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	got, ok := c.Translate(context.Background(), info, "hi")
	require.True(t, ok)
	v, _ := got.Get("name")
	assert.Equal(t, "नीम", v.Scalar())
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/translate", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "translator down"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	got, ok := c.Translate(context.Background(), info, "hi")
	assert.False(t, ok)
	assert.True(t, info.Equal(&got))
}

func TestTranslateEmptyResponseReturnsOriginal(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/translate", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	got, ok := c.Translate(context.Background(), info, "hi")
	assert.False(t, ok)
	assert.True(t, info.Equal(&got))
}

func TestSynthesizeSpeech(t *testing.T) {
	audio := []byte("mp3-bytes")
	r := chi.NewRouter()
	r.Post("/tts", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "ta", body["language"])
		writeJSON(w, http.StatusOK, map[string]string{
			"audioBase64": base64.StdEncoding.EncodeToString(audio),
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	got, err := c.SynthesizeSpeech(context.Background(), info, "ta")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestSynthesizeSpeechBadAudio(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/tts", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"audioBase64": "not-base64!!!"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))

	_, err := c.SynthesizeSpeech(context.Background(), info, "en")
	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, gateway.RequestRejected, reqErr.Kind)
}

func TestValidateTokenRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/validate_token", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expired"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	valid, err := c.ValidateToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTimeoutClassification(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, timeoutErr{}
	})}
	c := gateway.New("http://example.invalid", httpClient, nil)

	err := c.RequestReset(context.Background(), "a@b.com")
	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, gateway.RequestTimeout, reqErr.Kind)
	assert.True(t, gateway.Unreachable(err))
}

func TestSubmitFeedbackJSON(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/submit_feedback", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "suggestion", body["feedbackType"])
		assert.Equal(t, "add more plants", body["feedbackText"])
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, float64(4), body["rating"])
		writeJSON(w, http.StatusCreated, map[string]string{
			"message": "Feedback submitted successfully",
			"id":      "fb-1",
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	id, err := c.SubmitFeedback(context.Background(), gateway.Feedback{
		Name:   "amrita",
		Email:  "a@b.com",
		Type:   "suggestion",
		Text:   "add more plants",
		Rating: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", id)
}

func TestSubmitFeedbackWithScreenshot(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/submit_feedback", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseMultipartForm(1<<20))
		assert.Equal(t, "bug", req.FormValue("feedbackType"))
		assert.Equal(t, "wrong plant shown", req.FormValue("feedbackText"))
		assert.Equal(t, "3", req.FormValue("rating"))

		file, header, err := req.FormFile("screenshot")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "shot.png", header.Filename)

		writeJSON(w, http.StatusCreated, map[string]string{"id": "fb-2"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)
	id, err := c.SubmitFeedback(context.Background(), gateway.Feedback{
		Type:           "bug",
		Text:           "wrong plant shown",
		Rating:         3,
		Screenshot:     []byte("pngbytes"),
		ScreenshotName: "shot.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-2", id)
}

func TestSubmitFeedbackRequiresText(t *testing.T) {
	c := gateway.New("http://example.invalid", nil, nil)
	_, err := c.SubmitFeedback(context.Background(), gateway.Feedback{Type: "bug"})

	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, gateway.RequestRejected, reqErr.Kind)
}

func TestHistoryRoundTrip(t *testing.T) {
	sess := models.Session{Email: "a@b.com", CredentialSecret: "secret1"}

	var saved map[string]any
	r := chi.NewRouter()
	r.Post("/save_history", func(w http.ResponseWriter, req *http.Request) {
		saved = decodeBody(t, req)
		writeJSON(w, http.StatusOK, map[string]string{"message": "saved"})
	})
	r.Post("/get_history", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "a@b.com", body["email"])
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "e1", "plantName": "Neem", "confidence": 0.9, "timestamp": "2025-03-14T09:30:00Z", "info": map[string]string{}},
		})
	})
	r.Post("/delete_entry", func(w http.ResponseWriter, req *http.Request) {
		body := decodeBody(t, req)
		assert.Equal(t, "e1", body["entry_id"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	r.Post("/clear_history", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "cleared"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := gateway.New(srv.URL, srv.Client(), nil)

	var info plantinfo.InfoMap
	info.Set("name", plantinfo.Scalar("Neem"))
	entry := models.HistoryEntry{ID: "e1", UserID: "a@b.com", PlantName: "Neem", Confidence: 0.9, Timestamp: "2025-03-14T09:30:00Z", Info: info}
	require.NoError(t, c.SaveHistory(context.Background(), sess, entry))
	require.NotNil(t, saved)
	assert.Equal(t, "a@b.com", saved["email"])
	plantData, ok := saved["plant_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "e1", plantData["id"])

	entries, err := c.ListHistory(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Neem", entries[0].PlantName)

	require.NoError(t, c.DeleteEntry(context.Background(), sess, "e1"))
	require.NoError(t, c.ClearHistory(context.Background(), sess))
}
