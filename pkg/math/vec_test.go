package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	got := Vec3Right.Cross(Vec3Up)
	if got != Vec3Forward {
		t.Errorf("Vec3.Cross() = %v, want %v", got, Vec3Forward)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize() = %v, want zero", got)
	}
	if got := (Vec3{1e-9, 0, 0}).Normalize(); got != (Vec3{}) {
		t.Errorf("tiny Normalize() = %v, want zero", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, 30}

	got := a.Lerp(b, 0.5)
	want := Vec3{5, 10, 15}
	if !vecNear(got, want, 1e-5) {
		t.Errorf("Lerp = %v, want %v", got, want)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-1, 0},
		{0.5, 0.5},
		{2, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, 0, 1); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
