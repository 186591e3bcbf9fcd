package vision

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"recipe_backend/internal/feature/detection/domain"
)

// mockAnnotator はannotatorインターフェースのモック実装です。
type mockAnnotator struct {
	BatchAnnotateImagesFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
}

func (m *mockAnnotator) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	return m.BatchAnnotateImagesFunc(ctx, req)
}

func square(x1, y1, x2, y2 float32) *visionpb.BoundingPoly {
	return &visionpb.BoundingPoly{NormalizedVertices: []*visionpb.NormalizedVertex{
		{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
	}}
}

func TestVisionDetector_Detect(t *testing.T) {
	t.Parallel()

	m := &mockAnnotator{BatchAnnotateImagesFunc: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		require.Len(t, req.Requests, 1)
		assert.Equal(t, []byte("img"), req.Requests[0].Image.Content)
		require.Len(t, req.Requests[0].Features, 2)
		assert.Equal(t, visionpb.Feature_OBJECT_LOCALIZATION, req.Requests[0].Features[0].Type)
		assert.Equal(t, visionpb.Feature_LABEL_DETECTION, req.Requests[0].Features[1].Type)

		return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
			LocalizedObjectAnnotations: []*visionpb.LocalizedObjectAnnotation{
				{Name: "Tomato", Score: 0.92, BoundingPoly: square(0.1, 0.2, 0.4, 0.5)},
				{Name: "Plate", Score: 0.88, BoundingPoly: square(0, 0, 1, 1)},
			},
			LabelAnnotations: []*visionpb.EntityAnnotation{
				{Description: "Cucumber", Score: 0.81},
				{Description: "Vegetable", Score: 0.97},
			},
		}}}, nil
	}}
	v := &VisionDetector{client: m}

	got, err := v.Detect(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "tomato", got[0].Label)
	assert.InDelta(t, 0.92, got[0].Confidence, 1e-6)
	require.NotNil(t, got[0].Box)
	assert.InDelta(t, 0.1, got[0].Box.XMin, 1e-6)
	assert.InDelta(t, 0.5, got[0].Box.YMax, 1e-6)

	assert.Equal(t, "kyuuri", got[1].Label)
	assert.Nil(t, got[1].Box)
}

func TestVisionDetector_Detect_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *visionpb.BatchAnnotateImagesResponse
		err  error
	}{
		{name: "request failed", err: errors.New("permission denied")},
		{
			name: "per-image error",
			resp: &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{
				{Error: &status.Status{Code: 3, Message: "bad image data"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := &VisionDetector{client: &mockAnnotator{BatchAnnotateImagesFunc: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
				return tt.resp, tt.err
			}}}

			_, err := v.Detect(context.Background(), []byte("img"))
			assert.ErrorIs(t, err, domain.ErrInference)
		})
	}
}

func TestVisionDetector_Detect_NoResponses(t *testing.T) {
	t.Parallel()

	v := &VisionDetector{client: &mockAnnotator{BatchAnnotateImagesFunc: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return &visionpb.BatchAnnotateImagesResponse{}, nil
	}}}

	got, err := v.Detect(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, v.Close())
}

func TestToLabel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{"Tomato": "tomato", " sweet potato ": "satsumaimo", "BELL PEPPER": "papurika"} {
		got, ok := toLabel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got)
	}
	_, ok := toLabel("Food")
	assert.False(t, ok)
}
