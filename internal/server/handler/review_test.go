package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/mocks"
)

type ReviewHandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	reviewer *mocks.MockReviewer
	handler  *ReviewHandler
}

func (s *ReviewHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reviewer = mocks.NewMockReviewer(s.ctrl)
	s.handler = NewReviewHandler(s.reviewer, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ReviewHandlerSuite) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ai/get-review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.Handle(rec, req)
	return rec
}

func (s *ReviewHandlerSuite) TestInvalidCodeNeverReachesReviewer() {
	tooLong := `{"code":"` + strings.Repeat("a", core.MaxCodeLength+1) + `"}`

	for name, body := range map[string]string{
		"missing code":    `{}`,
		"empty code":      `{"code":""}`,
		"whitespace only": `{"code":"  \n\t "}`,
		"not a string":    `{"code":42}`,
		"null":            `{"code":null}`,
		"too long":        tooLong,
		"malformed json":  `{"code":`,
	} {
		s.Run(name, func() {
			rec := s.post(body)
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(msgInvalidCode, rec.Body.String())
		})
	}
}

func (s *ReviewHandlerSuite) TestUnknownModel() {
	rec := s.post(`{"code":"x := 1","model":"gpt-9"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(msgUnsupportedModel, rec.Body.String())
}

func (s *ReviewHandlerSuite) TestMaxLengthAccepted() {
	code := strings.Repeat("a", core.MaxCodeLength)
	s.reviewer.EXPECT().Review(gomock.Any(), code, core.ModelID("")).
		Return(core.Outcome{Kind: core.OutcomeSuccess, Text: "ok", Model: core.ModelGemini20Flash}, nil)

	rec := s.post(`{"code":"` + code + `"}`)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ReviewHandlerSuite) TestSuccess() {
	s.reviewer.EXPECT().Review(gomock.Any(), "x := 1", core.ModelOpenAIGPT35).
		Return(core.Outcome{Kind: core.OutcomeSuccess, Text: "Looks good.", Model: core.ModelOpenAIGPT35}, nil)

	rec := s.post(`{"code":"x := 1","model":"openai-gpt-3.5"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Looks good.", rec.Body.String())
	s.Equal("success", rec.Header().Get(HeaderOutcome))
	s.Equal("openai-gpt-3.5", rec.Header().Get(HeaderModel))
	s.Contains(rec.Header().Get("Content-Type"), "text/plain")
}

func (s *ReviewHandlerSuite) TestExhaustedStillAnswers200() {
	s.reviewer.EXPECT().Review(gomock.Any(), gomock.Any(), gomock.Any()).Return(core.Outcome{
		Kind:        core.OutcomeExhausted,
		LastFailure: &core.ProviderError{Model: core.ModelOpenAIGPT35, Kind: core.FailureOverloaded, Err: errors.New("503")},
	}, nil)

	rec := s.post(`{"code":"x := 1"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(core.MessageOverloaded, rec.Body.String())
	s.Equal("exhausted", rec.Header().Get(HeaderOutcome))
	s.Empty(rec.Header().Get(HeaderModel))
}

func (s *ReviewHandlerSuite) TestNoModels() {
	s.reviewer.EXPECT().Review(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.Outcome{Kind: core.OutcomeNoModels}, nil)

	rec := s.post(`{"code":"x := 1"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(core.MessageNoModels, rec.Body.String())
	s.Equal("no_models", rec.Header().Get(HeaderOutcome))
}

func (s *ReviewHandlerSuite) TestReviewerError() {
	s.reviewer.EXPECT().Review(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.Outcome{}, &core.ProviderError{Model: core.ModelGemini20Flash, Kind: core.FailureUnauthorized, Err: errors.New("bad key")})

	rec := s.post(`{"code":"x := 1"}`)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(msgReviewFailed, rec.Body.String())
	s.NotContains(rec.Body.String(), "bad key")
}

func (s *ReviewHandlerSuite) TestRequestContextIsPassed() {
	s.reviewer.EXPECT().Review(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ core.ModelID) (core.Outcome, error) {
			return core.Outcome{}, ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/ai/get-review", strings.NewReader(`{"code":"x"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.handler.Handle(rec, req)

	s.Equal(http.StatusInternalServerError, rec.Code)
}

func TestReviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerSuite))
}

func TestInvalidMessage(t *testing.T) {
	assert.Equal(t, msgUnsupportedModel, invalidMessage(&core.ValidationError{Field: "model"}))
	assert.Equal(t, msgInvalidCode, invalidMessage(&core.ValidationError{Field: "code"}))
	assert.Equal(t, msgInvalidCode, invalidMessage(errors.New("eof")))
}
