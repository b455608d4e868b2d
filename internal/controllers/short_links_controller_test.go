package controllers

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/shortlink/internal/config"
	"github.com/fsdevblog/shortlink/internal/controllers/middlewares"
	"github.com/fsdevblog/shortlink/internal/controllers/mocksctrl"
	"github.com/fsdevblog/shortlink/internal/models"
	"github.com/fsdevblog/shortlink/internal/services"
	"github.com/fsdevblog/shortlink/internal/tokens"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type CType string

const (
	JSONCType  CType = "json"
	PlainCType CType = "plain"

	adminSecret = "admin-secret"
)

type ShortLinkControllerSuite struct {
	suite.Suite
	linkServ *mocksctrl.MockShortLinkStore
	pingServ *mocksctrl.MockConnectionChecker
	router   *gin.Engine
	config   *config.Config
}

func (s *ShortLinkControllerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *ShortLinkControllerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.linkServ = mocksctrl.NewMockShortLinkStore(ctrl)
	s.pingServ = mocksctrl.NewMockConnectionChecker(ctrl)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s.config = &config.Config{
		ServerAddress:  ":80",
		BaseURL:        &url.URL{Scheme: "http", Host: "test.com:8080"},
		AdminJWTSecret: adminSecret,
	}
	s.router = SetupRouter(RouterParams{
		ShortLinkService: s.linkServ,
		PingService:      s.pingServ,
		AppConf:          s.config,
		Logger:           logger,
	})
}

//nolint:gocognit
func (s *ShortLinkControllerSuite) TestCreateShortLink() {
	validURL := "https://test.com/valid"
	invalidURL := "https://test .com/valid"
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	link := &models.ShortLink{
		ID: 1, OriginalURL: validURL, ShortCode: "Ab3Kx9Z", CreatedAt: createdAt, IsActive: true,
	}
	shortURL := fmt.Sprintf("%s/%s", s.config.BaseURL.String(), link.ShortCode)

	s.linkServ.EXPECT().Shorten(gomock.Any(), validURL).Return(link, nil).Times(4)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "valid", target: validURL, wantStatus: http.StatusCreated},
		{name: "invalid", target: invalidURL, wantStatus: http.StatusUnprocessableEntity},
	}

	jsonFn := func(to string) io.Reader {
		return strings.NewReader(fmt.Sprintf(`{"original_url": "%s"}`, to))
	}
	bodyFn := func(to string) io.Reader {
		return strings.NewReader(to)
	}
	requests := []struct {
		rType       CType
		uri         string
		contentType string
		bodyFn      func(to string) io.Reader
		gzip        bool
	}{
		{rType: JSONCType, uri: "/api/shorten", contentType: "application/json", bodyFn: jsonFn, gzip: true},
		{rType: JSONCType, uri: "/api/shorten", contentType: "application/json", bodyFn: jsonFn, gzip: false},
		{rType: PlainCType, uri: "/", contentType: "text/plain", bodyFn: bodyFn, gzip: true},
		{rType: PlainCType, uri: "/", contentType: "text/plain", bodyFn: bodyFn, gzip: false},
	}
	for _, r := range requests {
		for _, tt := range tests {
			s.Run(fmt.Sprintf("%s_%s_gzip_%t", r.rType, tt.name, r.gzip), func() {
				res := s.makeRequest(requestFields{
					Method:      http.MethodPost,
					URL:         r.uri,
					Body:        r.bodyFn(tt.target),
					ContentType: r.contentType,
					Gzipped:     r.gzip,
				})
				defer res.Body.Close()

				s.Equal(tt.wantStatus, res.StatusCode)
				if r.gzip {
					s.Equal("gzip", res.Header.Get("Content-Encoding"))
				}
				if tt.wantStatus != http.StatusCreated {
					return
				}

				body, bErr := readBody(res.Body, r.gzip)
				s.Require().NoError(bErr)

				if r.rType == PlainCType {
					s.Equal(shortURL, string(body))
					return
				}

				var resp ShortLinkResponse
				s.Require().NoError(json.Unmarshal(body, &resp))
				s.Equal(ShortLinkResponse{
					ID:          1,
					OriginalURL: validURL,
					ShortCode:   link.ShortCode,
					ShortURL:    shortURL,
					CreatedAt:   createdAt,
					IsActive:    true,
					Clicks:      0,
				}, resp)
			})
		}
	}
}

func (s *ShortLinkControllerSuite) TestCreateShortLink_Errors() {
	s.linkServ.EXPECT().Shorten(gomock.Any(), "https://invalid.com").
		Return(nil, fmt.Errorf("wrap: %w", services.ErrInvalidInput))
	s.linkServ.EXPECT().Shorten(gomock.Any(), "https://exhausted.com").
		Return(nil, services.ErrAllocationExhausted)
	s.linkServ.EXPECT().Shorten(gomock.Any(), "https://duplicate.com").
		Return(nil, services.ErrDuplicateCode)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "broken json", body: `{"original_url":`, wantStatus: http.StatusBadRequest},
		{name: "missing field", body: `{"url":"https://test.com"}`, wantStatus: http.StatusBadRequest},
		{name: "rejected by service", body: `{"original_url":"https://invalid.com"}`,
			wantStatus: http.StatusUnprocessableEntity},
		{name: "allocation exhausted", body: `{"original_url":"https://exhausted.com"}`,
			wantStatus: http.StatusInternalServerError},
		{name: "duplicate code", body: `{"original_url":"https://duplicate.com"}`,
			wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{
				Method:      http.MethodPost,
				URL:         "/api/shorten",
				Body:        strings.NewReader(tt.body),
				ContentType: "application/json",
			})
			defer res.Body.Close()

			s.Equal(tt.wantStatus, res.StatusCode)
			var resp map[string]string
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))
			s.NotEmpty(resp["error"])
		})
	}
}

func (s *ShortLinkControllerSuite) TestCreateShortLink_KeepsOriginalURL() {
	rawURLs := []string{
		"https://example.com/ä b",
		"http://intranet/x",
		"http://[::1]:8080/x",
	}
	for i, rawURL := range rawURLs {
		s.linkServ.EXPECT().Shorten(gomock.Any(), rawURL).
			Return(&models.ShortLink{ID: uint(i + 1), OriginalURL: rawURL, ShortCode: "Ab3Kx9Z"}, nil)
	}

	for _, rawURL := range rawURLs {
		s.Run(rawURL, func() {
			body, err := json.Marshal(ShortenRequest{OriginalURL: rawURL})
			s.Require().NoError(err)

			res := s.makeRequest(requestFields{
				Method:      http.MethodPost,
				URL:         "/api/shorten",
				Body:        bytes.NewReader(body),
				ContentType: "application/json",
			})
			defer res.Body.Close()

			s.Require().Equal(http.StatusCreated, res.StatusCode)
			var resp ShortLinkResponse
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))
			s.Equal(rawURL, resp.OriginalURL)
		})
	}
}

func (s *ShortLinkControllerSuite) TestCreateShortLink_BodyTooLarge() {
	longURL := "https://test.com/" + strings.Repeat("a", MaxBodySize)

	tests := []struct {
		name        string
		uri         string
		contentType string
		body        string
		gzip        bool
	}{
		{name: "json", uri: "/api/shorten", contentType: "application/json",
			body: fmt.Sprintf(`{"original_url":"%s"}`, longURL)},
		{name: "plain", uri: "/", contentType: "text/plain", body: longURL},
		{name: "gzip expands past limit", uri: "/", contentType: "text/plain", body: longURL, gzip: true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{
				Method:      http.MethodPost,
				URL:         tt.uri,
				Body:        strings.NewReader(tt.body),
				ContentType: tt.contentType,
				Gzipped:     tt.gzip,
			})
			defer res.Body.Close()

			s.Equal(http.StatusRequestEntityTooLarge, res.StatusCode)
		})
	}
}

func (s *ShortLinkControllerSuite) TestRedirect() {
	redirectTo := "https://test.com/test/123"

	s.linkServ.EXPECT().Redirect(gomock.Any(), "Ab3Kx9Z").
		Return(&models.ShortLink{ShortCode: "Ab3Kx9Z", OriginalURL: redirectTo, Clicks: 1, IsActive: true}, nil)
	s.linkServ.EXPECT().Redirect(gomock.Any(), "doesnotexist").
		Return(nil, services.ErrNotFound)
	s.linkServ.EXPECT().Redirect(gomock.Any(), "offline").
		Return(nil, services.ErrDeactivated)
	s.linkServ.EXPECT().Redirect(gomock.Any(), "broken").
		Return(nil, services.ErrUnknown)

	tests := []struct {
		name       string
		requestURI string
		wantStatus int
	}{
		{name: "valid", requestURI: "Ab3Kx9Z", wantStatus: http.StatusTemporaryRedirect},
		{name: "not exist", requestURI: "doesnotexist", wantStatus: http.StatusNotFound},
		{name: "deactivated", requestURI: "offline", wantStatus: http.StatusGone},
		{name: "storage failure", requestURI: "broken", wantStatus: http.StatusInternalServerError},
		{name: "root page", requestURI: "", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{
				Method: http.MethodGet,
				URL:    "/" + tt.requestURI,
			})
			defer res.Body.Close()

			body, _ := io.ReadAll(res.Body)
			s.Equal(tt.wantStatus, res.StatusCode, "Answer:", string(body))
			if tt.wantStatus == http.StatusTemporaryRedirect {
				s.Equal(redirectTo, res.Header.Get("Location"))
			} else {
				s.Empty(res.Header.Get("Location"))
			}
		})
	}
}

func (s *ShortLinkControllerSuite) TestStats() {
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.linkServ.EXPECT().Stats(gomock.Any(), "Ab3Kx9Z").Return(&models.ShortLink{
		ID: 3, OriginalURL: "https://example.com", ShortCode: "Ab3Kx9Z", CreatedAt: createdAt, Clicks: 42,
	}, nil)
	s.linkServ.EXPECT().Stats(gomock.Any(), "missing").Return(nil, services.ErrNotFound)

	res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/api/stats/Ab3Kx9Z"})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)

	var stats StatsResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&stats))
	s.Equal(StatsResponse{
		OriginalURL: "https://example.com",
		ShortCode:   "Ab3Kx9Z",
		Clicks:      42,
		CreatedAt:   createdAt,
	}, stats)

	notFound := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/api/stats/missing"})
	defer notFound.Body.Close()
	s.Equal(http.StatusNotFound, notFound.StatusCode)
}

func (s *ShortLinkControllerSuite) TestList() {
	links := []models.ShortLink{
		{ID: 1, OriginalURL: "https://a.com", ShortCode: "aaaaaaa", IsActive: true},
		{ID: 2, OriginalURL: "https://b.com", ShortCode: "bbbbbbb", Clicks: 5},
	}
	s.linkServ.EXPECT().List(gomock.Any(), 0, DefaultListLimit).Return(links, nil)
	s.linkServ.EXPECT().List(gomock.Any(), 10, MaxListLimit).Return([]models.ShortLink{}, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantLen: 2},
		{name: "limit capped", query: "?skip=10&limit=5000", wantStatus: http.StatusOK, wantLen: 0},
		{name: "negative skip", query: "?skip=-1", wantStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?limit=-5", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/api/urls" + tt.query})
			defer res.Body.Close()

			s.Equal(tt.wantStatus, res.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp []ShortLinkResponse
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))
			s.Len(resp, tt.wantLen)
			if tt.wantLen > 0 {
				s.Equal("http://test.com:8080/aaaaaaa", resp[0].ShortURL)
				s.Equal(int64(5), resp[1].Clicks)
			}
		})
	}
}

func (s *ShortLinkControllerSuite) TestPing() {
	gomock.InOrder(
		s.pingServ.EXPECT().CheckConnection(gomock.Any()).Return(nil),
		s.pingServ.EXPECT().CheckConnection(gomock.Any()).Return(errors.New("connection refused")),
	)

	ok := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/ping"})
	defer ok.Body.Close()
	body, _ := io.ReadAll(ok.Body)
	s.Equal(http.StatusOK, ok.StatusCode)
	s.Equal("pong", string(body))

	fail := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/ping"})
	defer fail.Body.Close()
	s.Equal(http.StatusInternalServerError, fail.StatusCode)
}

func (s *ShortLinkControllerSuite) TestDeactivate() {
	validToken, err := tokens.GenerateAdminJWT(time.Hour, []byte(adminSecret))
	s.Require().NoError(err)
	foreignToken, err := tokens.GenerateAdminJWT(time.Hour, []byte("other-secret"))
	s.Require().NoError(err)

	s.linkServ.EXPECT().Deactivate(gomock.Any(), "Ab3Kx9Z").Return(nil)
	s.linkServ.EXPECT().Deactivate(gomock.Any(), "missing").Return(services.ErrNotFound)

	tests := []struct {
		name       string
		code       string
		auth       string
		wantStatus int
	}{
		{name: "ok", code: "Ab3Kx9Z", auth: "Bearer " + validToken, wantStatus: http.StatusNoContent},
		{name: "not found", code: "missing", auth: "Bearer " + validToken, wantStatus: http.StatusNotFound},
		{name: "no token", code: "Ab3Kx9Z", wantStatus: http.StatusUnauthorized},
		{name: "foreign token", code: "Ab3Kx9Z", auth: "Bearer " + foreignToken, wantStatus: http.StatusUnauthorized},
		{name: "not bearer", code: "Ab3Kx9Z", auth: validToken, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/urls/"+tt.code+"/deactivate", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)

			s.Equal(tt.wantStatus, rec.Code)
		})
	}
}

func (s *ShortLinkControllerSuite) TestAdminRoutesDisabledWithoutSecret() {
	router := SetupRouter(RouterParams{
		ShortLinkService: s.linkServ,
		PingService:      s.pingServ,
		AppConf:          &config.Config{ServerAddress: ":80"},
		Logger:           nil,
	})
	token, err := tokens.GenerateAdminJWT(time.Hour, []byte(adminSecret))
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/urls/Ab3Kx9Z/deactivate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ShortLinkControllerSuite) TestRequestID() {
	s.pingServ.EXPECT().CheckConnection(gomock.Any()).Return(nil).Times(2)

	res := s.makeRequest(requestFields{Method: http.MethodGet, URL: "/ping"})
	defer res.Body.Close()
	generated := res.Header.Get(middlewares.RequestIDHeader)
	_, err := uuid.Parse(generated)
	s.NoError(err)

	passed := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middlewares.RequestIDHeader, passed)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(passed, rec.Header().Get(middlewares.RequestIDHeader))
}

func (s *ShortLinkControllerSuite) Test_validateURL() {
	validRaw := "https://test.com"
	validLocalhostRaw := "https://localhost"
	validIPRaw := "https://123.123.123.123/test"
	validIPv6Raw := "http://[::1]:8080/x"
	validSingleLabelRaw := "http://intranet/x"

	valid, _ := url.Parse(validRaw)
	validLocalhost, _ := url.Parse(validLocalhostRaw)
	validIP, _ := url.Parse(validIPRaw)
	validIPv6, _ := url.Parse(validIPv6Raw)
	validSingleLabel, _ := url.Parse(validSingleLabelRaw)

	tests := []struct {
		name    string
		rawURL  string
		want    *url.URL
		wantErr bool
	}{
		{name: "valid url", rawURL: validRaw, want: valid, wantErr: false},
		{name: "wrong scheme", rawURL: "test://test.com", want: nil, wantErr: true},
		{name: "space into", rawURL: "https://tes t.com", want: nil, wantErr: true},
		{name: "wrong chars", rawURL: "https://tes😀t.com", want: nil, wantErr: true},
		{name: "empty zone with dot", rawURL: "https://test.", want: nil, wantErr: true},
		{name: "single label host", rawURL: validSingleLabelRaw, want: validSingleLabel, wantErr: false},
		{name: "localhost", rawURL: validLocalhostRaw, want: validLocalhost, wantErr: false},
		{name: "ip address", rawURL: validIPRaw, want: validIP, wantErr: false},
		{name: "ipv6 address", rawURL: validIPv6Raw, want: validIPv6, wantErr: false},
		{name: "hyphen at label end", rawURL: "https://test-.com", want: nil, wantErr: true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := validateURL(tt.rawURL)
			if tt.wantErr {
				s.Error(err)
				s.Nil(got)
				return
			}
			s.Require().NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

type requestFields struct {
	Method      string
	URL         string
	Body        io.Reader
	ContentType string
	Gzipped     bool
}

// makeRequest вспомогательная функция создающая тестовый http запрос.
func (s *ShortLinkControllerSuite) makeRequest(fields requestFields) *http.Response {
	body := fields.Body

	// Добавляем gzip сжатие тела запроса, если надо.
	if fields.Gzipped && fields.Body != nil {
		var gzipBuffer bytes.Buffer
		gzipW := gzip.NewWriter(&gzipBuffer)
		_, copyErr := io.Copy(gzipW, fields.Body)
		s.Require().NoError(copyErr)
		s.Require().NoError(gzipW.Close())
		body = &gzipBuffer
	}

	request := httptest.NewRequest(fields.Method, fields.URL, body)
	if fields.ContentType != "" {
		request.Header.Set("Content-Type", fields.ContentType)
	}
	if fields.Gzipped {
		request.Header.Set("Content-Encoding", "gzip")
		request.Header.Set("Accept-Encoding", "gzip")
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder.Result()
}

func TestShortLinkControllerSuite(t *testing.T) {
	suite.Run(t, new(ShortLinkControllerSuite))
}

// readBody Читает тело ответа, если тело сжатое - расжимает.
func readBody(r io.Reader, compressed bool) ([]byte, error) {
	if !compressed {
		return io.ReadAll(r)
	}
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gzr.Close()
	return io.ReadAll(gzr)
}
