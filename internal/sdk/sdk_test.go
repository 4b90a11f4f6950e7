package sdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goplus/lwipbuild/internal/target"
)

type fakeLocator struct {
	root  string
	err   error
	calls []string
}

func (f *fakeLocator) SDKPath(ctx context.Context, variant string) (string, error) {
	f.calls = append(f.calls, variant)
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(f.root, variant+".sdk"), nil
}

func TestVariant(t *testing.T) {
	tests := []struct {
		os, arch, triple string
		want             string
	}{
		{"ios", "amd64", "x86_64-apple-ios", IPhoneSimulator},
		{"ios", "arm64", "aarch64-apple-ios-sim", IPhoneSimulator},
		{"ios", "arm64", "arm64-apple-ios-simulator", IPhoneSimulator},
		{"ios", "arm64", "aarch64-apple-ios", IPhoneOS},
		{"ios", "arm", "armv7-apple-ios", IPhoneOS},
		{"ios", "amd64", "x86_64-apple-ios-macabi", IPhoneOS},
		{"ios", "arm64", "aarch64-apple-ios-macabi", IPhoneOS},
		{"darwin", "arm64", "aarch64-apple-darwin", MacOSX},
		{"darwin", "amd64", "x86_64-apple-darwin", MacOSX},
		{"linux", "amd64", "x86_64-unknown-linux-gnu", ""},
		{"android", "arm64", "aarch64-linux-android", ""},
		{"windows", "amd64", "x86_64-pc-windows-gnu", ""},
	}
	for _, tt := range tests {
		tg := target.New(tt.os, tt.arch, tt.triple)
		if got := Variant(tg); got != tt.want {
			t.Errorf("Variant(%s) = %q, want %q", tt.triple, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	loc := &fakeLocator{root: "/sdks"}
	dir, ok, err := Resolve(context.Background(), target.New("ios", "amd64", ""), loc)
	if err != nil || !ok {
		t.Fatalf("Resolve = %q, %v, %v", dir, ok, err)
	}
	want := filepath.Join("/sdks", "iphonesimulator.sdk", "usr", "include")
	if dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
	if len(loc.calls) != 1 || loc.calls[0] != IPhoneSimulator {
		t.Errorf("locator calls = %v, want [%s]", loc.calls, IPhoneSimulator)
	}
}

func TestResolveNoSDK(t *testing.T) {
	loc := &fakeLocator{err: errors.New("must not be called")}
	dir, ok, err := Resolve(context.Background(), target.New("linux", "arm64", ""), loc)
	if err != nil || ok || dir != "" {
		t.Errorf("Resolve = %q, %v, %v; want empty result", dir, ok, err)
	}
	if len(loc.calls) != 0 {
		t.Errorf("locator called for linux: %v", loc.calls)
	}
}

func TestResolveLocatorError(t *testing.T) {
	loc := &fakeLocator{err: errors.New("exit status 1")}
	_, _, err := Resolve(context.Background(), target.New("darwin", "arm64", ""), loc)
	if !errors.Is(err, ErrToolInvocation) {
		t.Errorf("err = %v, want ErrToolInvocation", err)
	}
}

func TestResolveInvalidPath(t *testing.T) {
	loc := LocatorFunc(func(ctx context.Context, variant string) (string, error) {
		return "/sdks/\xff\xfe", nil
	})
	_, _, err := Resolve(context.Background(), target.New("darwin", "amd64", ""), loc)
	if !errors.Is(err, ErrPathEncoding) {
		t.Errorf("err = %v, want ErrPathEncoding", err)
	}
}

func TestXcrunMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "xcrun")
	_, _, err := Resolve(context.Background(), target.New("ios", "arm64", ""), Xcrun(missing))
	if !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("err = %v, want ErrToolInvocation", err)
	}
}

func TestXcrunFake(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "xcrun")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho /Applications/Xcode.app/SDKs/$2.sdk\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	dir, ok, err := Resolve(context.Background(), target.New("darwin", "arm64", ""), Xcrun(path))
	if err != nil || !ok {
		t.Fatalf("Resolve = %q, %v, %v", dir, ok, err)
	}
	if want := filepath.Join("/Applications/Xcode.app/SDKs/macosx.sdk", "usr", "include"); dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
}
