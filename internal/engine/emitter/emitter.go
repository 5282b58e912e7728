// # internal/engine/emitter/emitter.go
package emitter

import (
	"context"
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/model"
	"dts2as/internal/shared/observability"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Unit is the rendered source of one package-level definition.
type Unit struct {
	PackageName string
	ShortName   string
	Text        string
}

// Emitter renders ActionScript stubs from a fully resolved World. It only
// reads the World, so one Emitter may render units concurrently.
type Emitter struct {
	world *model.World
}

func New(world *model.World) *Emitter {
	return &Emitter{world: world}
}

// Emit renders def as a complete source unit.
func (e *Emitter) Emit(def model.Definition) (string, error) {
	switch d := def.(type) {
	case *model.ClassDefinition:
		return e.class(d), nil
	case *model.InterfaceDefinition:
		return e.iface(d), nil
	case *model.PackageFunctionDefinition:
		return e.function(d), nil
	case *model.PackageVariableDefinition:
		return e.variable(d), nil
	default:
		return "", errors.New(errors.CodeNotSupported, fmt.Sprintf("cannot emit %T", def))
	}
}

// EmitAll renders every non-external definition in World order, using at
// most workers goroutines (unbounded when workers <= 0).
func (e *Emitter) EmitAll(ctx context.Context, workers int) ([]Unit, error) {
	ctx, span := observability.Tracer.Start(ctx, "emitter.EmitAll", trace.WithAttributes(
		attribute.Int("workers", workers),
	))
	defer span.End()
	start := time.Now()

	var defs []model.Definition
	for _, def := range e.world.Definitions() {
		if !def.Head().External {
			defs = append(defs, def)
		}
	}

	units := make([]Unit, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, def := range defs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := e.Emit(def)
			if err != nil {
				return errors.AddContext(err, errors.CtxSymbol, def.Head().FQN())
			}
			units[i] = Unit{
				PackageName: def.Head().PackageName,
				ShortName:   def.Head().Name,
				Text:        text,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	observability.UnitsEmittedTotal.Add(float64(len(units)))
	observability.EmitDuration.Observe(time.Since(start).Seconds())
	return units, nil
}
