// Package stdlib provides the built-in `std` function bundle.
package stdlib

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/registry"
	"github.com/xtml-lang/xtml/pkgs/types"
)

const charset = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz"

// Register adds the std namespace and its functions to reg.
func Register(reg *registry.Registry) {
	reg.RegisterNamespace("std")

	mustRegister(reg, "toUpper", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindString {
			return types.Unknown(), errors.New(errors.ErrType, "std::toUpper expects a single string argument")
		}
		return types.Str(strings.ToUpper(args[0].Raw)), nil
	})

	mustRegister(reg, "toLower", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindString {
			return types.Unknown(), errors.New(errors.ErrType, "std::toLower expects a single string argument")
		}
		return types.Str(strings.ToLower(args[0].Raw)), nil
	})

	mustRegister(reg, "toInt", 1, 1, func(args []types.Value) (types.Value, error) {
		n, err := cast.ToInt64E(args[0].Raw)
		if err != nil {
			return types.Unknown(), errors.New(errors.ErrType, "std::toInt expects a numeric argument")
		}
		return types.Num(n), nil
	})

	mustRegister(reg, "toStr", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind == types.KindArray {
			return types.Unknown(), errors.New(errors.ErrType, "std::toStr does not accept arrays")
		}
		return types.Str(args[0].Raw), nil
	})

	mustRegister(reg, "len", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindString {
			return types.Unknown(), errors.New(errors.ErrType, "std::len expects a single string argument")
		}
		return types.Num(int64(len(args[0].Raw))), nil
	})

	mustRegister(reg, "trim", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindString {
			return types.Unknown(), errors.New(errors.ErrType, "std::trim expects a single string argument")
		}
		return types.Str(strings.TrimSpace(args[0].Raw)), nil
	})

	mustRegister(reg, "trimQuotes", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindString {
			return types.Unknown(), errors.New(errors.ErrType, "std::trimQuotes expects a single string argument")
		}
		s := args[0].Raw
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			s = s[1 : len(s)-1]
		}
		return types.Str(s), nil
	})

	mustRegister(reg, "isInt", 1, 1, func(args []types.Value) (types.Value, error) {
		ok := args[0].Kind == types.KindNumber && types.IsDigits(args[0].Raw)
		return types.BoolValue(ok), nil
	})

	mustRegister(reg, "isStr", 1, 1, func(args []types.Value) (types.Value, error) {
		return types.BoolValue(args[0].Kind == types.KindString), nil
	})

	mustRegister(reg, "get", 2, 2, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindArray || args[1].Kind != types.KindNumber {
			return types.Unknown(), errors.New(errors.ErrType, "std::get expects an array and a numeric index")
		}
		index, err := cast.ToIntE(args[1].Raw)
		if err != nil {
			return types.Unknown(), errors.New(errors.ErrType, "std::get expects a numeric index")
		}
		if index < 0 || index >= len(args[0].Items) {
			return types.Unknown(), errors.Newf(errors.ErrValue, "std::get index %d out of bounds (array has %d elements)", index, len(args[0].Items))
		}
		return args[0].Items[index], nil
	})

	mustRegister(reg, "count", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindArray {
			return types.Unknown(), errors.New(errors.ErrType, "std::count expects a single array argument")
		}
		return types.Num(int64(len(args[0].Items))), nil
	})

	mustRegister(reg, "print", 1, 1, func(args []types.Value) (types.Value, error) {
		return types.Str(args[0].Raw), nil
	})

	mustRegister(reg, "randStr", 1, 1, func(args []types.Value) (types.Value, error) {
		if args[0].Kind != types.KindNumber {
			return types.Unknown(), errors.New(errors.ErrType, "std::randStr expects a single numeric argument")
		}
		length, err := cast.ToIntE(args[0].Raw)
		if err != nil || length < 0 {
			return types.Unknown(), errors.New(errors.ErrType, "std::randStr expects a non-negative length")
		}
		b := make([]byte, length)
		for i := range b {
			b[i] = charset[rand.Intn(len(charset))]
		}
		return types.Str(string(b)), nil
	})

	mustRegister(reg, "uuid", 0, 1, func(args []types.Value) (types.Value, error) {
		if len(args) == 0 {
			return types.Str(uuid.NewString()), nil
		}
		if args[0].Kind != types.KindNumber {
			return types.Unknown(), errors.New(errors.ErrType, "std::uuid expects 0 or 1 numeric argument (seed)")
		}
		seed, err := cast.ToInt64E(args[0].Raw)
		if err != nil {
			return types.Unknown(), errors.New(errors.ErrType, "std::uuid expects a numeric seed")
		}
		return types.Str(seededUUID(seed)), nil
	})
}

// seededUUID generates a deterministic 36-character dashed identifier so
// seeded output is stable across runs.
func seededUUID(seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, 36)
	for i := range b {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			b[i] = '-'
			continue
		}
		b[i] = charset[rng.Intn(len(charset))]
	}
	return string(b)
}

func mustRegister(reg *registry.Registry, name string, minArgs, maxArgs int, fn registry.Func) {
	if err := reg.Register("std", name, fn, minArgs, maxArgs); err != nil {
		panic("stdlib: " + err.Error())
	}
}
