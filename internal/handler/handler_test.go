package handler

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/turingcompletejeff/blogsite/internal/config"
	"github.com/turingcompletejeff/blogsite/internal/domain"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/markdown"
	"github.com/turingcompletejeff/blogsite/internal/middleware"
	"github.com/turingcompletejeff/blogsite/internal/service"
	"github.com/turingcompletejeff/blogsite/internal/storage/fs"
)

// --- Mocks ---

type MockAuthService struct {
	MockRegister func(username, email, password string) (domain.User, error)
	MockLogin    func(username, password string) (domain.User, string, error)
	MockUserById func(id domain.UserId) (domain.User, error)
}

func (m *MockAuthService) Register(username, email, password string) (domain.User, error) {
	if m.MockRegister != nil {
		return m.MockRegister(username, email, password)
	}
	return domain.User{Id: 1, Username: username}, nil
}

func (m *MockAuthService) Login(username, password string) (domain.User, string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(username, password)
	}
	return domain.User{Id: 1, Username: username}, "test_token", nil
}

func (m *MockAuthService) UserById(id domain.UserId) (domain.User, error) {
	if m.MockUserById != nil {
		return m.MockUserById(id)
	}
	return domain.User{Id: id, Username: "writer"}, nil
}

type MockPostService struct {
	MockCreate    func(author *domain.User, post domain.Post) (domain.PostId, error)
	MockGet       func(id domain.PostId, viewer *domain.User) (domain.Post, error)
	MockPublished func() ([]domain.Post, error)
	MockDrafts    func(viewer *domain.User) ([]domain.Post, error)
	MockAll       func() ([]domain.Post, error)
	MockUpdate    func(editor *domain.User, post domain.Post) error
	MockPublish   func(editor *domain.User, id domain.PostId) error
	MockDelete    func(editor *domain.User, id domain.PostId) error
}

func (m *MockPostService) Create(author *domain.User, post domain.Post) (domain.PostId, error) {
	if m.MockCreate != nil {
		return m.MockCreate(author, post)
	}
	return 1, nil
}

func (m *MockPostService) Get(id domain.PostId, viewer *domain.User) (domain.Post, error) {
	if m.MockGet != nil {
		return m.MockGet(id, viewer)
	}
	return domain.Post{Id: id, AuthorId: 1, Title: "t", Body: "b"}, nil
}

func (m *MockPostService) Published() ([]domain.Post, error) {
	if m.MockPublished != nil {
		return m.MockPublished()
	}
	return nil, nil
}

func (m *MockPostService) Drafts(viewer *domain.User) ([]domain.Post, error) {
	if m.MockDrafts != nil {
		return m.MockDrafts(viewer)
	}
	return nil, nil
}

func (m *MockPostService) All() ([]domain.Post, error) {
	if m.MockAll != nil {
		return m.MockAll()
	}
	return nil, nil
}

func (m *MockPostService) Update(editor *domain.User, post domain.Post) error {
	if m.MockUpdate != nil {
		return m.MockUpdate(editor, post)
	}
	return nil
}

func (m *MockPostService) Publish(editor *domain.User, id domain.PostId) error {
	if m.MockPublish != nil {
		return m.MockPublish(editor, id)
	}
	return nil
}

func (m *MockPostService) Delete(editor *domain.User, id domain.PostId) error {
	if m.MockDelete != nil {
		return m.MockDelete(editor, id)
	}
	return nil
}

type MockAccounts struct {
	MockUsers                func() ([]domain.User, error)
	MockUpdateRoles          func(id domain.UserId, roles []string) error
	MockUpdateProfilePicture func(id domain.UserId, filename string) (string, error)
}

func (m *MockAccounts) Users() ([]domain.User, error) {
	if m.MockUsers != nil {
		return m.MockUsers()
	}
	return nil, nil
}

func (m *MockAccounts) UpdateRoles(id domain.UserId, roles []string) error {
	if m.MockUpdateRoles != nil {
		return m.MockUpdateRoles(id, roles)
	}
	return nil
}

func (m *MockAccounts) UpdateProfilePicture(id domain.UserId, filename string) (string, error) {
	if m.MockUpdateProfilePicture != nil {
		return m.MockUpdateProfilePicture(id, filename)
	}
	return "", nil
}

// --- Fixtures ---

var internalServerError = internal_errors.ErrorWithStatusCode{
	Message: "Internal server error", StatusCode: http.StatusInternalServerError}

func mustParse(text string) *template.Template {
	return template.Must(template.New("base.html").Parse(text))
}

var testTemplateNames = []string{
	"index.html", "post.html", "post_form.html", "login.html",
	"register.html", "profile.html", "drafts.html", "admin.html",
}

func testTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	for _, name := range testTemplateNames {
		templates[name] = template.Must(template.New("base.html").Parse(
			"page " + name + " error={{.Common.Error}}"))
	}
	return templates
}

type testDeps struct {
	handler  *Handler
	auth     *MockAuthService
	posts    *MockPostService
	accounts *MockAccounts
	uploads  *service.Upload
	store    *fs.Store
}

func newTestHandler(t *testing.T) *testDeps {
	t.Helper()

	dir := t.TempDir()
	store, err := fs.New(map[domain.Category]string{
		domain.CategoryBlogPosts: dir + "/blog-posts",
		domain.CategoryProfiles:  dir + "/profiles",
	})
	require.NoError(t, err)

	policies := config.Uploads{
		BlogPosts: config.UploadPolicy{
			MaxSizeBytes:      1 << 20,
			AllowedExtensions: []string{".png", ".jpg", ".jpeg", ".gif"},
			ThumbnailWidth:    64,
			ThumbnailHeight:   64,
		},
		Profiles: config.UploadPolicy{
			MaxSizeBytes:      1 << 20,
			AllowedExtensions: []string{".png", ".jpg", ".jpeg"},
			ThumbnailWidth:    32,
			ThumbnailHeight:   32,
		},
	}

	auth := &MockAuthService{}
	posts := &MockPostService{}
	accounts := &MockAccounts{}
	uploads := service.NewUpload(store, policies)
	console := service.NewConsole(config.Rcon{})

	public := config.Public{JwtTTL: time.Hour, PostsPerPage: 10, Uploads: policies}

	h := New(testTemplates(), public, auth, posts, uploads, console, accounts, markdown.New())
	return &testDeps{handler: h, auth: auth, posts: posts, accounts: accounts, uploads: uploads, store: store}
}

// withUser simulates the auth middleware.
func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), user))
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

// multipartForm builds a multipart body with the given fields and one
// optional file under the "portrait" field.
func multipartForm(t *testing.T, fields map[string]string, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("portrait", filename)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func serve(h http.HandlerFunc, pattern, method string, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func flashValue(t *testing.T, rr *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			decoded, err := base64.StdEncoding.DecodeString(c.Value)
			require.NoError(t, err)
			return string(decoded)
		}
	}
	return ""
}
