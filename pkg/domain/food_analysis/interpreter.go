// Package food_analysis turns a food photo into a FoodRecord by walking an
// explicit state machine over up to four inference calls:
//
//	CapturedImage -> PresenceChecked -> NutritionExtracted
//	  -> MealTypeClassified -> HealthScored -> Normalized
//
// An explicit "not_food" answer ends in Rejected (ErrNotFood). Any other
// failure ends in Fallback with a fixed estimated record.
package food_analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/ai_response"
	"github.com/risithcha/nutritrack/pkg/types"
)

type Config struct {
	// Timeout bounds each inference call. Zero means shared.DefaultInferenceTimeout.
	Timeout time.Duration
	// Parallel issues the nutrition, meal-type and health-score calls
	// concurrently once the presence check has passed.
	Parallel bool

	Now   func() time.Time
	NewID func() string
}

type Interpreter struct {
	gen    shared.Generator
	logger *slog.Logger
	cfg    Config
}

func New(gen shared.Generator, logger *slog.Logger, cfg Config) *Interpreter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = shared.DefaultInferenceTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		gen:    gen,
		logger: logger.With("component", "food_analysis"),
		cfg:    cfg,
	}
}

// Analyze runs the pipeline for one captured image. The only error it
// returns is ErrNotFood; every other failure is recovered into a Fallback
// result.
func (i *Interpreter) Analyze(ctx context.Context, ref string, image shared.Image) (*Result, error) {
	captured := NewCapturedImage(ref, image)
	path := []State{StateCapturedImage}

	checked, err := i.checkPresence(ctx, captured)
	if errors.Is(err, ErrNotFood) {
		i.logger.Info("Image rejected: not food", "image_ref", ref)
		return nil, err
	}
	if err != nil {
		return i.fallback(ref, append(path, StateFallback), err), nil
	}
	path = append(path, StatePresenceChecked)

	var scored HealthScored
	if i.cfg.Parallel {
		scored, err = i.runParallel(ctx, checked)
		if err == nil {
			path = append(path, StateNutritionExtracted, StateMealTypeClassified, StateHealthScored)
		}
	} else {
		scored, path, err = i.runSequential(ctx, checked, path)
	}
	if err != nil {
		return i.fallback(ref, append(path, StateFallback), err), nil
	}

	record := i.normalize(scored)
	i.logger.Info("Food analysed",
		"image_ref", ref,
		"name", record.Name,
		"calories", record.Kcal,
		"meal_type", record.MealType,
		"health_score", record.HealthScore,
	)
	return &Result{
		Record: record,
		State:  StateNormalized,
		Path:   append(path, StateNormalized),
	}, nil
}

func (i *Interpreter) runSequential(ctx context.Context, checked PresenceChecked, path []State) (HealthScored, []State, error) {
	payload, err := i.extractNutrition(ctx, checked)
	if err != nil {
		return HealthScored{}, path, err
	}
	extracted := checked.withNutrition(payload)
	path = append(path, StateNutritionExtracted)

	mealType, err := i.classifyMealType(ctx, checked)
	if err != nil {
		return HealthScored{}, path, err
	}
	classified := extracted.withMealType(mealType)
	path = append(path, StateMealTypeClassified)

	score, err := i.scoreHealth(ctx, checked)
	if err != nil {
		return HealthScored{}, path, err
	}
	path = append(path, StateHealthScored)
	return classified.withHealthScore(score), path, nil
}

func (i *Interpreter) runParallel(ctx context.Context, checked PresenceChecked) (HealthScored, error) {
	var (
		payload  NutritionPayload
		mealType types.MealType
		score    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payload, err = i.extractNutrition(gctx, checked)
		return err
	})
	g.Go(func() error {
		var err error
		mealType, err = i.classifyMealType(gctx, checked)
		return err
	})
	g.Go(func() error {
		var err error
		score, err = i.scoreHealth(gctx, checked)
		return err
	})
	if err := g.Wait(); err != nil {
		return HealthScored{}, err
	}

	return checked.withNutrition(payload).withMealType(mealType).withHealthScore(score), nil
}

func (i *Interpreter) checkPresence(ctx context.Context, c CapturedImage) (PresenceChecked, error) {
	answer, err := i.ask(ctx, StateCapturedImage, presencePrompt, &c.image)
	if err != nil {
		return PresenceChecked{}, err
	}
	i.logger.Debug("Presence check", "answer", answer)
	if IsNotFood(answer) {
		return PresenceChecked{}, ErrNotFood
	}
	return PresenceChecked{CapturedImage: c}, nil
}

func (i *Interpreter) extractNutrition(ctx context.Context, s PresenceChecked) (NutritionPayload, error) {
	answer, err := i.ask(ctx, StatePresenceChecked, nutritionPrompt, &s.image)
	if err != nil {
		return NutritionPayload{}, err
	}
	return ParseNutritionPayload(answer)
}

func (i *Interpreter) classifyMealType(ctx context.Context, s PresenceChecked) (types.MealType, error) {
	answer, err := i.ask(ctx, StateNutritionExtracted, mealTypePrompt, &s.image)
	if err != nil {
		return "", err
	}
	return ParseMealType(answer), nil
}

func (i *Interpreter) scoreHealth(ctx context.Context, s PresenceChecked) (int, error) {
	answer, err := i.ask(ctx, StateMealTypeClassified, healthScorePrompt, &s.image)
	if err != nil {
		return 0, err
	}
	return ParseHealthScore(answer), nil
}

func (i *Interpreter) normalize(s HealthScored) types.FoodRecord {
	p := s.payload
	return types.FoodRecord{
		ID:                     i.cfg.NewID(),
		Name:                   p.Name,
		Kcal:                   p.Calories.Value,
		ProteinG:               p.Protein.Or(0),
		CarbsG:                 p.Carbs.Or(0),
		FatG:                   p.Fat.Or(0),
		FiberG:                 p.Fiber.Or(0),
		SugarG:                 p.Sugar.Or(0),
		SodiumMg:               p.Sodium.Or(0),
		ServingSizeDescription: p.ServingSize,
		ConfidencePct:          p.ConfidencePct(),
		MealType:               s.mealType,
		HealthScore:            s.healthScore,
		SourceImageRef:         s.ref,
		CapturedAt:             i.cfg.Now(),
	}
}

func (i *Interpreter) fallback(ref string, path []State, cause error) *Result {
	i.logger.Warn("Food analysis fell back to estimated record", "image_ref", ref, "error", cause)
	return &Result{
		Record: FallbackRecord(i.cfg.NewID(), ref, i.cfg.Now()),
		State:  StateFallback,
		Path:   path,
		Cause:  cause,
	}
}

// ask sends one prompt, optionally with the image, under the per-call timeout.
func (i *Interpreter) ask(ctx context.Context, stage State, prompt string, image *shared.Image) (string, error) {
	if i.gen == nil {
		return "", &InferenceUnavailableError{Stage: stage, Err: shared.NewInferenceError(shared.InferenceNotConfigured, nil)}
	}

	callCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	parts := []shared.PromptPart{shared.TextPart(prompt)}
	if image != nil {
		parts = append(parts, shared.ImagePart(*image))
	}

	answer, err := i.gen.Generate(callCtx, parts...)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = shared.NewInferenceError(shared.InferenceTimeout, err)
		}
		return "", &InferenceUnavailableError{Stage: stage, Err: err}
	}
	return answer, nil
}

// Tips asks for 2-3 short tips about an analysed record. It never fails:
// any error yields FallbackTips.
func (i *Interpreter) Tips(ctx context.Context, r types.FoodRecord) []string {
	answer, err := i.ask(ctx, StateNormalized, buildTipsPrompt(r), nil)
	if err != nil {
		i.logger.Warn("Nutrition tips unavailable", "error", err)
		return append([]string{}, FallbackTips...)
	}
	tips := ai_response.Lines(answer)
	if len(tips) == 0 {
		return append([]string{}, FallbackTips...)
	}
	return tips
}
