package cms

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/apperror"
	"go-admissions-backend/pkg/synclog"
)

func testClient(t *testing.T, upstream http.Handler, serviceToken string) *Client {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(Config{BaseURL: srv.URL, ServiceToken: serviceToken}, log, synclog.Default())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestEnvelopeNormalization(t *testing.T) {
	t.Run("flattened record", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":7,"documentId":"abc","fullName":"Jane Doe"}}`), &env))
		entry, err := env.One()
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.ID)
		assert.Equal(t, "abc", entry.DocumentID)
		assert.Equal(t, "Jane Doe", entry.String("fullName"))
	})

	t.Run("record nested under attributes", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":7,"attributes":{"documentId":"abc","fullName":"Jane Doe"}}}`), &env))
		entry, err := env.One()
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.ID)
		assert.Equal(t, "abc", entry.DocumentID)
		assert.Equal(t, "Jane Doe", entry.String("fullName"))
	})

	t.Run("null data yields no entry", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":null}`), &env))
		entry, err := env.One()
		assert.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("filtered lookup answers with an array", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":7,"fullName":"Jane Doe"},{"id":8}]}`), &env))
		entry, err := env.One()
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.ID)
	})

	t.Run("doubled write envelope", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":{"data":{"id":7,"fullName":"Jane Doe"}}}`), &env))
		entry, err := env.One()
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(7), entry.ID)
	})

	t.Run("relation shapes all resolve to the foreign key", func(t *testing.T) {
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":1,"bare":5,"wrapped":{"id":6},"enveloped":{"data":{"id":9}}}}`), &env))
		entry, err := env.One()
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(5), *entry.RelationID("bare"))
		assert.Equal(t, int64(6), *entry.RelationID("wrapped"))
		assert.Equal(t, int64(9), *entry.RelationID("enveloped"))
		assert.Nil(t, entry.RelationID("absent"))
	})
}

func TestFindByUserSendsFilteredLookup(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		writeJSON(w, 200, `{"data":[{"id":7,"fullName":"Jane Doe","user":{"id":42}}]}`)
	})

	repo := NewProfileRepository(testClient(t, handler, "service-token"))
	profile, err := repo.FindByUser(context.Background(), domain.RoleStudent, 42, domain.UserCredential("user-token"))

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "/api/student-profiles", gotPath)
	assert.Equal(t, []string{"42"}, gotQuery["filters[user][id][$eq]"])
	assert.Equal(t, []string{"true"}, gotQuery["populate[skills]"])
	assert.Equal(t, int64(42), profile.UserID)
	assert.Equal(t, "Jane Doe", profile.FullName)
}

func TestFindByUserAbsentProfile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[]}`)
	})

	repo := NewProfileRepository(testClient(t, handler, ""))
	profile, err := repo.FindByUser(context.Background(), domain.RoleStudent, 42, domain.UserCredential("user-token"))

	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCreateFallsBackToServiceToken(t *testing.T) {
	var tokens []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") == "Bearer user-token" {
			writeJSON(w, 403, `{"error":{"status":403,"name":"ForbiddenError","message":"Forbidden"}}`)
			return
		}
		writeJSON(w, 200, `{"data":{"id":7,"fullName":"Jane Doe"}}`)
	})

	repo := NewProfileRepository(testClient(t, handler, "service-token"))
	profile, err := repo.Create(context.Background(), domain.RoleStudent, map[string]any{"user": int64(42)}, domain.UserCredential("user-token"))

	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, []string{"Bearer user-token", "Bearer service-token"}, tokens)
}

func TestUpdateReresolvesIdentifierOnLastRung(t *testing.T) {
	var putPaths []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/student-profiles/7":
			putPaths = append(putPaths, r.URL.Path)
			writeJSON(w, 404, `{"error":{"status":404,"name":"NotFoundError","message":"Not Found"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/student-profiles":
			// fresh filtered read reveals the canonical identifier
			writeJSON(w, 200, `{"data":[{"id":9,"documentId":"xyz","user":{"id":42}}]}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/student-profiles/9":
			putPaths = append(putPaths, r.URL.Path)
			writeJSON(w, 200, `{"data":{"id":9,"documentId":"xyz"}}`)
		default:
			writeJSON(w, 500, `{"error":{"status":500,"name":"Unexpected","message":"`+r.Method+" "+r.URL.Path+`"}}`)
		}
	})

	repo := NewProfileRepository(testClient(t, handler, "service-token"))
	profile, err := repo.Update(context.Background(), domain.RoleStudent,
		domain.EntityRef{ID: 7},
		map[string]any{"user": int64(42), "bio": "hi"},
		domain.UserCredential("user-token"))

	require.NoError(t, err)
	assert.Equal(t, int64(9), profile.ID)
	// two rejected attempts against the stale id, then the refreshed one
	assert.Equal(t, []string{"/api/student-profiles/7", "/api/student-profiles/7", "/api/student-profiles/9"}, putPaths)
}

func TestUpdateExhaustionYieldsDiagnostic(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, 200, `{"data":[{"id":7,"user":{"id":42}}]}`)
			return
		}
		writeJSON(w, 403, `{"error":{"status":403,"name":"ForbiddenError","message":"Forbidden"}}`)
	})

	repo := NewProfileRepository(testClient(t, handler, "service-token"))
	_, err := repo.Update(context.Background(), domain.RoleStudent,
		domain.EntityRef{ID: 7},
		map[string]any{"user": int64(42)},
		domain.UserCredential("user-token"))

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
	assert.Contains(t, appErr.Message, "student-profiles")
	assert.Contains(t, appErr.Message, "Attempts")
	assert.Contains(t, appErr.Message, "user/numeric-id")
	assert.Contains(t, appErr.Message, "service/re-resolved")
}

func TestNonPermissionErrorAbortsFallback(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, 400, `{"error":{"status":400,"name":"ValidationError","message":"level must be one of Beginner, Intermediate, Advanced, Expert"}}`)
	})

	repo := NewSkillRepository(testClient(t, handler, "service-token"))
	_, err := repo.Create(context.Background(), domain.SkillInput{SkillName: "Go", Level: "Sorcerer"}, domain.UserCredential("user-token"))

	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation failures must not trigger credential escalation")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 400, ue.Status)
}

func TestSkillLookupIsExact(t *testing.T) {
	var gotQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, 200, `{"data":[{"id":31,"skillName":"Go","level":"Advanced"}]}`)
	})

	repo := NewSkillRepository(testClient(t, handler, ""))
	ref, err := repo.FindByNameAndLevel(context.Background(), "Go", "Advanced", domain.UserCredential("user-token"))

	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, int64(31), ref.ID)
	assert.Equal(t, []string{"Go"}, gotQuery["filters[skillName][$eq]"])
	assert.Equal(t, []string{"Advanced"}, gotQuery["filters[level][$eq]"])
}

func TestJobListFilters(t *testing.T) {
	var gotQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, 200, `{"data":[{"id":3,"title":"Lecturer","category":{"id":2,"name":"Education"}}]}`)
	})

	cat := int64(2)
	repo := NewJobRepository(testClient(t, handler, "service-token"))
	jobs, err := repo.List(context.Background(), domain.JobFilter{
		CategoryID: &cat,
		Search:     "lect",
		Page:       2,
		PageSize:   20,
	}, domain.ServiceCredential())

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Lecturer", jobs[0].Title)
	assert.Equal(t, []string{"2"}, gotQuery["filters[category][id][$eq]"])
	assert.Equal(t, []string{"lect"}, gotQuery["filters[title][$containsi]"])
	assert.Equal(t, []string{"2"}, gotQuery["pagination[page]"])
	assert.Equal(t, []string{"20"}, gotQuery["pagination[pageSize]"])
}

func TestUserRepoResolvesRole(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, 200, `{"id":42,"username":"jane","email":"jane@example.com","confirmed":true,"blocked":false,"role":{"id":3,"name":"Student","type":"student"}}`)
	})

	repo := NewUserRepository(testClient(t, handler, ""))
	user, err := repo.GetMe(context.Background(), "user-token")

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "student", user.Role)
}

func TestServiceTierWithoutTokenFails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach upstream without a usable credential")
	})

	client := testClient(t, handler, "")
	_, err := client.Get(context.Background(), "/api/jobs", nil, domain.ServiceCredential())
	assert.Error(t, err)
}
