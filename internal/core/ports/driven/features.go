package driven

import "context"

// FeatureExtractor runs the external stylometric analysis tool over a
// corpus directory and writes a feature table to outputPath.
type FeatureExtractor interface {
	Extract(ctx context.Context, corpusDir, outputPath string) error
}
