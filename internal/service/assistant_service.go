package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/cache"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"
)

const maxDrugNameLength = 100

var drugNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-()]+$`)

// Invoker runs a prompt through the retrying call gateway.
type Invoker interface {
	Invoke(ctx context.Context, prompt gateway.Prompt) (string, error)
}

type AssistantService interface {
	DrugInfo(ctx context.Context, name string) (string, error)
	SymptomAdvice(ctx context.Context, symptoms string) (string, error)
	PredictConditions(ctx context.Context, symptoms string) (string, error)
	AnalyzeImage(ctx context.Context, dataURL string) (string, error)
}

type assistantService struct {
	gateway Invoker
	cache   cache.ResponseCache
	logger  *zap.Logger
	group   singleflight.Group
}

func NewAssistantService(gw Invoker, responses cache.ResponseCache, logger *zap.Logger) AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assistantService{gateway: gw, cache: responses, logger: logger}
}

// ValidateDrugName accepts 2 to 100 characters of letters, digits, spaces,
// hyphens and parentheses.
func ValidateDrugName(name string) error {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < 2 || utf8.RuneCountInString(name) > maxDrugNameLength {
		return ErrInvalidDrugName
	}
	if !drugNamePattern.MatchString(trimmed) {
		return ErrInvalidDrugName
	}
	return nil
}

func (s *assistantService) DrugInfo(ctx context.Context, name string) (string, error) {
	if err := ValidateDrugName(name); err != nil {
		return "", err
	}
	key := cache.NormalizeKey(name)

	if text, ok := s.cache.Get(ctx, key); ok {
		s.logger.Debug("drug info cache hit", zap.String("drug", key))
		return text, nil
	}
	s.logger.Debug("drug info cache miss", zap.String("drug", key))

	// Concurrent misses for one drug share a single gateway call. The shared
	// work runs detached from any one request so a disconnecting client
	// neither fails the others nor drops the cache write.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		if text, ok := s.cache.Get(detached, key); ok {
			return text, nil
		}
		text, err := s.gateway.Invoke(detached, gateway.TextPrompt(drugInfoPrompt(strings.TrimSpace(name))))
		if err != nil {
			return "", err
		}
		s.cache.Set(detached, key, text)
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("drug info lookup failed", zap.String("drug", key), zap.Error(res.Err))
			return "", res.Err
		}
		if res.Shared {
			s.logger.Debug("drug info coalesced", zap.String("drug", key))
		}
		return res.Val.(string), nil
	}
}

func (s *assistantService) SymptomAdvice(ctx context.Context, symptoms string) (string, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return "", ErrEmptyInput
	}
	return s.gateway.Invoke(ctx, gateway.TextPrompt(symptomAdvicePrompt(symptoms)))
}

func (s *assistantService) PredictConditions(ctx context.Context, symptoms string) (string, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return "", ErrEmptyInput
	}
	return s.gateway.Invoke(ctx, gateway.TextPrompt(predictConditionsPrompt(symptoms)))
}

func (s *assistantService) AnalyzeImage(ctx context.Context, dataURL string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:image/") || !strings.Contains(dataURL, ",") {
		return "", ErrInvalidImage
	}
	return s.gateway.Invoke(ctx, gateway.Prompt{
		Text:   imageAnalysisPrompt,
		Images: []string{dataURL},
	})
}

var _ AssistantService = (*assistantService)(nil)
