package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks RegistryService,ConsensusService,FreshnessService,SlashingService

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"surety/internal/oracle/handler/mocks"
	"surety/internal/oracle/models"
	"surety/internal/oracle/service/consensus"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

type OracleHandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	registry  *mocks.MockRegistryService
	consensus *mocks.MockConsensusService
	freshness *mocks.MockFreshnessService
	slashing  *mocks.MockSlashingService
	router    chi.Router
}

func TestOracleHandlerSuite(t *testing.T) {
	suite.Run(t, new(OracleHandlerSuite))
}

func (s *OracleHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = mocks.NewMockRegistryService(s.ctrl)
	s.consensus = mocks.NewMockConsensusService(s.ctrl)
	s.freshness = mocks.NewMockFreshnessService(s.ctrl)
	s.slashing = mocks.NewMockSlashingService(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.registry, s.consensus, s.freshness, s.slashing, logger)

	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *OracleHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *OracleHandlerSuite) TestSubmitAttestationAccepted() {
	subject := id.NewPolicyID()
	signature := make([]byte, ed25519.SignatureSize)
	_, err := rand.Read(signature)
	s.Require().NoError(err)
	reported := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s.consensus.EXPECT().
		Submit(gomock.Any(), consensus.SubmitRequest{
			Subject:    subject,
			Value:      100_000,
			ReportedAt: reported,
			Attestor:   id.AttestorID("acme-actuarial"),
			Signature:  signature,
		}).
		Return(&consensus.SubmitResult{
			RoundSeq:  1,
			State:     models.RoundOpen,
			VoteCount: 1,
		}, nil)

	rec := s.do(http.MethodPost, "/oracle/attestations", map[string]any{
		"subject":     subject.String(),
		"value":       100_000,
		"reported_at": reported.Unix(),
		"attestor":    "acme-actuarial",
		"signature":   base64.StdEncoding.EncodeToString(signature),
	})

	s.Equal(http.StatusAccepted, rec.Code)
	var resp SubmitAttestationResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(int64(1), resp.RoundSeq)
	s.Equal(string(models.RoundOpen), resp.State)
	s.Nil(resp.FinalizedValue)
}

func (s *OracleHandlerSuite) TestSubmitAttestationFinalizedCarriesValue() {
	subject := id.NewPolicyID()
	signature := make([]byte, ed25519.SignatureSize)

	s.consensus.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		Return(&consensus.SubmitResult{
			RoundSeq:       2,
			State:          models.RoundFinalized,
			VoteCount:      3,
			FinalizedValue: 101_500,
		}, nil)

	rec := s.do(http.MethodPost, "/oracle/attestations", map[string]any{
		"subject":     subject.String(),
		"value":       101_500,
		"reported_at": time.Now().Unix(),
		"attestor":    "acme-actuarial",
		"signature":   base64.StdEncoding.EncodeToString(signature),
	})

	s.Equal(http.StatusAccepted, rec.Code)
	var resp SubmitAttestationResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().NotNil(resp.FinalizedValue)
	s.Equal(int64(101_500), *resp.FinalizedValue)
}

func (s *OracleHandlerSuite) TestSubmitAttestationRejectsBadSignatureEncoding() {
	rec := s.do(http.MethodPost, "/oracle/attestations", map[string]any{
		"subject":     id.NewPolicyID().String(),
		"value":       100_000,
		"reported_at": time.Now().Unix(),
		"attestor":    "acme-actuarial",
		"signature":   "not base64!!",
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *OracleHandlerSuite) TestSubmitAttestationUntrustedSubmitterIsForbidden() {
	s.consensus.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUntrustedSubmitter, "attestor is not trusted"))

	rec := s.do(http.MethodPost, "/oracle/attestations", map[string]any{
		"subject":     id.NewPolicyID().String(),
		"value":       100_000,
		"reported_at": time.Now().Unix(),
		"attestor":    "rogue",
		"signature":   base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize)),
	})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *OracleHandlerSuite) TestRegisterAttestorCreated() {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	registered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	s.registry.EXPECT().
		Register(gomock.Any(), id.AttestorID("beacon-audit"), pub, int64(1_000_000)).
		Return(&models.Attestor{
			ID:           "beacon-audit",
			PublicKey:    pub,
			Stake:        1_000_000,
			Active:       true,
			RegisteredAt: registered,
		}, nil)

	rec := s.do(http.MethodPost, "/oracle/attestors", map[string]any{
		"attestor":   "beacon-audit",
		"public_key": base64.StdEncoding.EncodeToString(pub),
		"stake":      1_000_000,
	})

	s.Equal(http.StatusCreated, rec.Code)
	var resp AttestorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("beacon-audit", resp.Attestor)
	s.True(resp.Active)
}

func (s *OracleHandlerSuite) TestRegisterAttestorInsufficientStake() {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)

	s.registry.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInsufficientStake, "stake below minimum"))

	rec := s.do(http.MethodPost, "/oracle/attestors", map[string]any{
		"attestor":   "beacon-audit",
		"public_key": base64.StdEncoding.EncodeToString(pub),
		"stake":      10,
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *OracleHandlerSuite) TestDeactivateAttestor() {
	s.registry.EXPECT().
		Deactivate(gomock.Any(), id.AttestorID("beacon-audit")).
		Return(nil)

	rec := s.do(http.MethodDelete, "/oracle/attestors/beacon-audit", nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *OracleHandlerSuite) TestSlashAttestor() {
	slashedAt := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	s.slashing.EXPECT().
		Slash(gomock.Any(), id.AttestorID("beacon-audit"), "case-2025-014").
		Return(&models.Attestor{
			ID:             "beacon-audit",
			Stake:          0,
			ForfeitedStake: 1_000_000,
			Slashed:        true,
			EvidenceRef:    "case-2025-014",
			SlashedAt:      &slashedAt,
		}, nil)

	rec := s.do(http.MethodPost, "/oracle/attestors/beacon-audit/slash", map[string]any{
		"evidence_ref": "case-2025-014",
	})

	s.Equal(http.StatusOK, rec.Code)
	var resp AttestorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Slashed)
	s.Equal(int64(1_000_000), resp.ForfeitedStake)
}

func (s *OracleHandlerSuite) TestGetValuation() {
	subject := id.NewPolicyID()
	finalized := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

	s.freshness.EXPECT().
		Latest(gomock.Any(), subject).
		Return(&models.FreshnessRecord{
			Subject:     subject,
			Value:       99_800,
			FinalizedAt: finalized,
		}, nil)
	s.freshness.EXPECT().
		IsStale(gomock.Any(), subject).
		Return(false, nil)

	rec := s.do(http.MethodGet, "/oracle/valuations/"+subject.String(), nil)

	s.Equal(http.StatusOK, rec.Code)
	var resp ValuationResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(int64(99_800), resp.Value)
	s.False(resp.Stale)
}

func (s *OracleHandlerSuite) TestGetValuationUnknownSubject() {
	subject := id.NewPolicyID()
	s.freshness.EXPECT().
		Latest(gomock.Any(), subject).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "no finalized valuation"))

	rec := s.do(http.MethodGet, "/oracle/valuations/"+subject.String(), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}
