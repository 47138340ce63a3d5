package gateway

import (
	"context"

	"modeldash/internal/core"

	"golang.org/x/sync/errgroup"
)

// ClassifyModels splits model ids by the "ft:" prefix, keeping input order
// within each group.
func ClassifyModels(models []core.ModelRecord) core.ModelClassification {
	result := core.ModelClassification{
		Base:      []string{},
		FineTuned: []string{},
	}
	for _, m := range models {
		if m.IsFineTuned() {
			result.FineTuned = append(result.FineTuned, m.ID())
		} else {
			result.Base = append(result.Base, m.ID())
		}
	}
	return result
}

// BuildFineTuneMap maps each produced model id to the job that produced it.
// Jobs without a model are skipped; on collision the later job wins.
func BuildFineTuneMap(fineTunes []core.FineTuneRecord) core.FineTuneMap {
	return buildFineTuneMap(fineTunes, nil)
}

func buildFineTuneMap(fineTunes []core.FineTuneRecord, onCollision func(model, previous, next string)) core.FineTuneMap {
	result := make(core.FineTuneMap, len(fineTunes))
	for _, ft := range fineTunes {
		model, ok := ft.ProducedModel()
		if !ok {
			continue
		}
		id := ft.ID()
		if previous, exists := result[model]; exists && previous != id && onCollision != nil {
			onCollision(model, previous, id)
		}
		result[model] = id
	}
	return result
}

// LoadIndex fetches models and fine-tunes concurrently and derives the
// index page view. Like the List* operations it never fails.
func (g *Gateway) LoadIndex(ctx context.Context) core.IndexView {
	var (
		models    []core.ModelRecord
		fineTunes []core.FineTuneRecord
		eg        errgroup.Group
	)
	// List* fold their own failures, so the closures never return an error
	// and one failed list never cancels the other.
	eg.Go(func() error {
		models = g.ListModels(ctx)
		return nil
	})
	eg.Go(func() error {
		fineTunes = g.ListFineTunes(ctx)
		return nil
	})
	_ = eg.Wait()

	classified := ClassifyModels(models)
	fineTuneMap := buildFineTuneMap(fineTunes, func(model, previous, next string) {
		g.logger.Warn("[%s] Fine-tuned model %s claimed by jobs %s and %s, keeping %s", core.RequestIDFromContext(ctx), model, previous, next, next)
	})

	return core.IndexView{
		BaseModels:      classified.Base,
		FineTunedModels: classified.FineTuned,
		FineTuneMap:     fineTuneMap,
	}
}
