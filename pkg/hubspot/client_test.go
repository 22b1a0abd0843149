package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

func TestNewClientValidatesInputs(t *testing.T) {
	_, err := NewClient("", "form-1", "")
	require.Error(t, err)

	_, err = NewClient("12345", "  ", "")
	require.Error(t, err)
}

func TestHasCRMToken(t *testing.T) {
	withToken, err := NewClient("12345", "form-1", "pat-token")
	require.NoError(t, err)
	assert.True(t, withToken.HasCRMToken())

	withoutToken, err := NewClient("12345", "form-1", "  ")
	require.NoError(t, err)
	assert.False(t, withoutToken.HasCRMToken())
}

func TestSubmitFormPostsToPortalForm(t *testing.T) {
	var gotPath string
	var gotBody formSubmission
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient("12345", "form-1", "", WithFormsBaseURL(server.URL))
	require.NoError(t, err)

	fields := []FormField{{Name: "email", Value: "dana@example.com"}}
	formCtx := &FormContext{PageURI: "https://meridianprocure.com/quote", IPAddress: "203.0.113.9"}
	require.NoError(t, client.SubmitForm(context.Background(), fields, formCtx))

	assert.Equal(t, "/submissions/v3/integration/submit/12345/form-1", gotPath)
	require.Len(t, gotBody.Fields, 1)
	assert.Equal(t, "email", gotBody.Fields[0].Name)
	require.NotNil(t, gotBody.Context)
	assert.Equal(t, "203.0.113.9", gotBody.Context.IPAddress)
}

func TestSubmitFormRequiresFields(t *testing.T) {
	client, err := NewClient("12345", "form-1", "")
	require.NoError(t, err)

	err = client.SubmitForm(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSubmitFormSurfacesUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"status": "error"}`, http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient("12345", "form-1", "", WithFormsBaseURL(server.URL))
	require.NoError(t, err)

	err = client.SubmitForm(context.Background(), []FormField{{Name: "email", Value: "x@y.z"}}, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestUpsertContactCreatesNewContact(t *testing.T) {
	var gotAuth string
	var gotBody map[string]map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient("12345", "form-1", "pat-token", WithCRMBaseURL(server.URL))
	require.NoError(t, err)

	props := map[string]string{"firstname": "Dana", "empty": ""}
	require.NoError(t, client.UpsertContact(context.Background(), "dana@example.com", props))

	assert.Equal(t, "Bearer pat-token", gotAuth)
	assert.Equal(t, "dana@example.com", gotBody["properties"]["email"])
	assert.Equal(t, "Dana", gotBody["properties"]["firstname"])
	_, hasEmpty := gotBody["properties"]["empty"]
	assert.False(t, hasEmpty, "empty properties are dropped")
}

func TestUpsertContactPatchesExistingOnConflict(t *testing.T) {
	var methods []string
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		paths = append(paths, r.URL.Path)
		if r.Method == http.MethodPost {
			http.Error(w, `{"category": "CONFLICT"}`, http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient("12345", "form-1", "pat-token", WithCRMBaseURL(server.URL))
	require.NoError(t, err)

	require.NoError(t, client.UpsertContact(context.Background(), "dana@example.com", map[string]string{"firstname": "Dana"}))

	require.Equal(t, []string{http.MethodPost, http.MethodPatch}, methods)
	assert.Equal(t, "/crm/v3/objects/contacts", paths[0])
	assert.Equal(t, "/crm/v3/objects/contacts/dana@example.com", paths[1])
}

func TestUpsertContactRequiresToken(t *testing.T) {
	client, err := NewClient("12345", "form-1", "")
	require.NoError(t, err)

	err = client.UpsertContact(context.Background(), "dana@example.com", nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestUpsertContactRequiresEmail(t *testing.T) {
	client, err := NewClient("12345", "form-1", "pat-token")
	require.NoError(t, err)

	err = client.UpsertContact(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
