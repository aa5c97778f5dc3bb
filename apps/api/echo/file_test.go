package echoapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
)

// newUploadRequest builds a multipart upload of an in-memory file.
func newUploadRequest(t *testing.T, token string, groupID int, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("group_id", strconv.Itoa(groupID)))
	require.NoError(t, w.WriteField("description", "shared notes"))
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func TestFileUpload(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	token := getToken(t, jane)

	t.Run("disallowed extension", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, grp.ID, "malware.exe", "MZ")
		env.server.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: errorBody(t, map[string]string{"file": "only images, PDFs, and documents are allowed"}),
		}
		checkCodeAndData(t, tt, rec)
		assert.Zero(t, env.store.Len()) // nothing stored
	})

	t.Run("unknown group", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, 12345, "notes.pdf", "%PDF-1.4")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, grp.ID, "OS Notes.PDF", "%PDF-1.4 lorem ipsum")
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data file.File `json:"data"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "OS Notes.PDF", resp.Data.FileName) // display name kept verbatim
		assert.Equal(t, ".pdf", resp.Data.FileType)
		assert.Equal(t, int64(len("%PDF-1.4 lorem ipsum")), resp.Data.FileSize)
		assert.Equal(t, "shared notes", resp.Data.Description.String)
		assert.Equal(t, jane.ID, resp.Data.UploadedBy)
		assert.True(t, strings.HasPrefix(resp.Data.FileURL, "/uploads/"), resp.Data.FileURL)
		assert.True(t, strings.HasSuffix(resp.Data.FileURL, ".pdf"), resp.Data.FileURL)
		assert.Equal(t, 1, env.store.Len())
	})
}

func TestFileQuery(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 5, group.TypePublic)
	token := getToken(t, jane)

	req, rec := newUploadRequest(t, token, grp.ID, "notes.pdf", "%PDF-1.4")
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/files/group/%d", grp.ID), token)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data  []file.File `json:"data"`
		Count int         `json:"count"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "notes.pdf", resp.Data[0].FileName)
	assert.Equal(t, "Jane Doe", resp.Data[0].UploadedByName)
	assert.Equal(t, "jane@test.com", resp.Data[0].UploadedByEmail)
}

func TestFileDestroy(t *testing.T) {
	env := setup(t)

	jane := env.createUser(t, "Jane Doe", "jane@test.com", "hellodolly")
	john := env.createUser(t, "John Doe", "john@test.com", "hellodolly")
	mary := env.createUser(t, "Mary Major", "mary@test.com", "hellodolly")
	adam := env.createUser(t, "Adam Admin", "adam@test.com", "hellodolly")
	grp := env.createGroup(t, jane, "OS Crammers", 6, group.TypePublic)
	env.join(t, john, grp.ID)
	env.join(t, mary, grp.ID)
	adamM := env.join(t, adam, grp.ID)

	_, err := env.memberSvc.Update(context.Background(), adamM.ID, membership.UpdateMembership{Role: membership.RoleAdmin})
	require.NoError(t, err)

	upload := func(t *testing.T) file.File {
		t.Helper()
		req, rec := newUploadRequest(t, getToken(t, john), grp.ID, "notes.pdf", "%PDF-1.4")
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Data file.File `json:"data"`
		}
		decodeBody(t, rec, &resp)
		return resp.Data
	}

	t.Run("plain member cannot delete others'", func(t *testing.T) {
		f := upload(t)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/files/%d", f.ID), getToken(t, mary))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("uploader", func(t *testing.T) {
		before := env.store.Len()
		f := upload(t)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/files/%d", f.ID), getToken(t, john))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: successMessage(t, "File deleted successfully")}
		checkCodeAndData(t, tt, rec)
		assert.Equal(t, before, env.store.Len()) // bytes gone too
	})

	t.Run("group admin", func(t *testing.T) {
		f := upload(t)
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/files/%d", f.ID), getToken(t, adam))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown file", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/files/12345", getToken(t, jane))
		env.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: errorBody(t, "file not found")}
		checkCodeAndData(t, tt, rec)
	})
}
