package domain

type ImageType string

const (
	ImageProcessed   ImageType = "processed"
	ImageOriginal    ImageType = "original"
	ImagePlaceholder ImageType = "placeholder"
)

// An ImageResult is the image chosen for a product and the reason for it.
type ImageResult struct {
	URL    string
	Type   ImageType
	Reason string
}
