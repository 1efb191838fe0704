// Package vision はGoogle Cloud Vision SafeSearchによる生成画像の審査を提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"imagegen_backend/internal/feature/generation/usecase"
)

// SafeSearchModerator はSafeSearch判定で不適切な画像を拒否します。
type SafeSearchModerator struct {
	client *gvision.ImageAnnotatorClient
}

// SafeSearchModeratorがModeratorを実装していることをコンパイル時に検証します。
var _ usecase.Moderator = (*SafeSearchModerator)(nil)

// NewSafeSearchModerator はADCを使用してSafeSearchModeratorの新しいインスタンスを生成します。
func NewSafeSearchModerator(ctx context.Context) (*SafeSearchModerator, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &SafeSearchModerator{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *SafeSearchModerator) Close() error {
	return v.client.Close()
}

// Check は画像バイト列をSafeSearchにかけます。
func (v *SafeSearchModerator) Check(ctx context.Context, imageData []byte) error {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return fmt.Errorf("vision API request failed: %w", err)
	}
	return evaluate(resp)
}

// evaluate は adult または violence が LIKELY 以上なら ErrContentRejected を返します。
func evaluate(resp *visionpb.BatchAnnotateImagesResponse) error {
	if resp == nil || len(resp.Responses) == 0 {
		return fmt.Errorf("vision API returned no annotations")
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return fmt.Errorf("vision API error: %s", r.Error.Message)
	}
	ann := r.SafeSearchAnnotation
	if ann == nil {
		return fmt.Errorf("vision API returned no safe search annotation")
	}
	if flagged(ann.Adult) {
		return fmt.Errorf("%w: adult=%s", usecase.ErrContentRejected, ann.Adult)
	}
	if flagged(ann.Violence) {
		return fmt.Errorf("%w: violence=%s", usecase.ErrContentRejected, ann.Violence)
	}
	return nil
}

func flagged(l visionpb.Likelihood) bool {
	return l == visionpb.Likelihood_LIKELY || l == visionpb.Likelihood_VERY_LIKELY
}
