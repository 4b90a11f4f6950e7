// Package sdk decides whether a target needs platform SDK headers and
// locates them.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/goplus/lwipbuild/internal/target"
	"github.com/goplus/lwipbuild/x/xcrun"
	"github.com/qiniu/x/log"
)

// SDK variants understood by the locator.
const (
	IPhoneOS        = "iphoneos"
	IPhoneSimulator = "iphonesimulator"
	MacOSX          = "macosx"
)

// includeSubdir is appended to the SDK root to form the header directory.
const includeSubdir = "usr/include"

var (
	// ErrToolInvocation reports that the locator could not be run or
	// exited abnormally.
	ErrToolInvocation = errors.New("sdk: toolchain locator failed")
	// ErrPathEncoding reports an SDK path that is not valid text.
	ErrPathEncoding = errors.New("sdk: invalid include path")
)

// Locator returns the root directory of an SDK variant.
type Locator interface {
	SDKPath(ctx context.Context, variant string) (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, variant string) (string, error)

func (f LocatorFunc) SDKPath(ctx context.Context, variant string) (string, error) {
	return f(ctx, variant)
}

// Xcrun returns a Locator backed by the xcrun binary at path.
func Xcrun(path string) Locator {
	x := xcrun.New(path)
	return LocatorFunc(func(ctx context.Context, variant string) (string, error) {
		root, err := x.ShowSDKPath(ctx, variant)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrToolInvocation, x.Path, err)
		}
		return root, nil
	})
}

// Variant returns the SDK variant tg needs, or "" when no SDK headers are
// required.
func Variant(tg target.Target) string {
	switch tg.OS {
	case "ios":
		if tg.IsSimulator() {
			return IPhoneSimulator
		}
		return IPhoneOS
	case "darwin":
		return MacOSX
	}
	return ""
}

// Resolve returns the SDK header directory for tg. ok is false, with a nil
// error, when tg needs no SDK.
func Resolve(ctx context.Context, tg target.Target, loc Locator) (dir string, ok bool, err error) {
	variant := Variant(tg)
	if variant == "" {
		log.Debugf("sdk: %s needs no platform headers", tg)
		return "", false, nil
	}
	root, err := loc.SDKPath(ctx, variant)
	if err != nil {
		if !errors.Is(err, ErrToolInvocation) {
			err = fmt.Errorf("%w: %w", ErrToolInvocation, err)
		}
		return "", false, err
	}
	if !utf8.ValidString(root) {
		return "", false, fmt.Errorf("%w: %q", ErrPathEncoding, root)
	}
	dir = filepath.Join(root, includeSubdir)
	log.Debugf("sdk: %s uses %s headers at %s", tg, variant, dir)
	return dir, true, nil
}
