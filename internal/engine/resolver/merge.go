package resolver

import "dts2as/internal/engine/model"

// mergeSignature folds an overload into the canonical signature, position
// by position. The canonical names and order win. A position only one side
// has becomes optional, and types or returns that differ widen to Object.
// A default value already on the canonical side is kept as written.
func mergeSignature(canon *model.Signature, next model.Signature) {
	rest := restIndex(canon.Params)
	for i, p := range next.Params {
		if rest >= 0 && i >= rest {
			// absorbed by the canonical rest parameter
			break
		}
		if i >= len(canon.Params) {
			if !p.Rest && p.Default == "" {
				p.Default = model.DefaultLiteral(p.Type)
			}
			canon.Params = append(canon.Params, p)
			if p.Rest {
				break
			}
			continue
		}
		c := &canon.Params[i]
		if c.Type != p.Type {
			c.Type = model.Prim(model.Object)
		}
		if (p.Optional() || p.Rest) && !c.Optional() && !c.Rest {
			c.Default = model.DefaultLiteral(c.Type)
		}
	}
	for i := len(next.Params); i < len(canon.Params); i++ {
		c := &canon.Params[i]
		if !c.Rest && c.Default == "" {
			c.Default = model.DefaultLiteral(c.Type)
		}
	}
	if canon.Return != next.Return {
		canon.Return = model.Prim(model.Object)
	}
	trailingDefaults(canon.Params)
}

func restIndex(params []model.Parameter) int {
	for i, p := range params {
		if p.Rest {
			return i
		}
	}
	return -1
}

// trailingDefaults makes every parameter after an optional one optional too.
func trailingDefaults(params []model.Parameter) {
	optional := false
	for i := range params {
		p := &params[i]
		if p.Rest {
			continue
		}
		if p.Optional() {
			optional = true
			continue
		}
		if optional {
			p.Default = model.DefaultLiteral(p.Type)
		}
	}
}
