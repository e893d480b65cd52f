package proctoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	const threshold = 30.0

	tests := []struct {
		name   string
		sample PoseSample
		want   Classification
	}{
		{"centered", PoseSample{FaceDetected: true, Yaw: 0}, Attentive},
		{"at threshold stays attentive", PoseSample{FaceDetected: true, Yaw: 30.0}, Attentive},
		{"just past threshold", PoseSample{FaceDetected: true, Yaw: 30.1}, LookingAway},
		{"negative yaw past threshold", PoseSample{FaceDetected: true, Yaw: -45.0}, LookingAway},
		{"no face", PoseSample{FaceDetected: false}, FaceLost},
		{"no face with zero yaw", PoseSample{FaceDetected: false, Yaw: 0}, FaceLost},
		{"extreme pitch alone is fine", PoseSample{FaceDetected: true, Yaw: 10, Pitch: 80}, Attentive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sample, threshold))
		})
	}
}

func TestNonCompliant(t *testing.T) {
	assert.False(t, Attentive.NonCompliant())
	assert.True(t, LookingAway.NonCompliant())
	assert.True(t, FaceLost.NonCompliant())
}
