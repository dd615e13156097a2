package classify

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"gridtrace/internal/imageops"
	"gridtrace/internal/pipeline"
)

type region struct {
	roi image.Rectangle
}

// mat crops the ROI out of img and returns its luminance. The caller closes
// the Mat.
func (r region) mat(img image.Image) (gocv.Mat, error) {
	crop, err := imageops.Crop(img, r.roi)
	if err != nil {
		return gocv.NewMat(), pipeline.Wrap(pipeline.ErrValidation, pipeline.StageClassify, "crop roi", "", err)
	}
	m, err := imageops.GrayMat(crop)
	if err != nil {
		return gocv.NewMat(), pipeline.Wrap(pipeline.ErrValidation, pipeline.StageClassify, "convert roi", "", err)
	}
	return m, nil
}

func checkTemplateSize(template image.Image, roi image.Rectangle) error {
	b := template.Bounds()
	if b.Dx() != roi.Dx() || b.Dy() != roi.Dy() {
		return pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "load template",
			fmt.Sprintf("template is %dx%d but roi is %dx%d", b.Dx(), b.Dy(), roi.Dx(), roi.Dy()), nil)
	}
	return nil
}

func templateMat(template image.Image) (gocv.Mat, error) {
	m, err := imageops.GrayMat(template)
	if err != nil {
		return gocv.NewMat(), pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "load template", "", err)
	}
	return m, nil
}

// ShapeClassifier scores by Hu-moment shape distance.
type ShapeClassifier struct {
	region
	template  imageops.Moments
	threshold float64
}

// NewShape builds a shape classifier; template must have the ROI's size.
func NewShape(template image.Image, roi image.Rectangle, threshold float64) (*ShapeClassifier, error) {
	if err := checkTemplateSize(template, roi); err != nil {
		return nil, err
	}
	m, err := templateMat(template)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return &ShapeClassifier{
		region:    region{roi: roi},
		template:  imageops.ComputeMoments(m),
		threshold: threshold,
	}, nil
}

func (c *ShapeClassifier) Score(img image.Image) (float64, error) {
	m, err := c.mat(img)
	if err != nil {
		return 0, err
	}
	defer m.Close()
	return imageops.ComputeMoments(m).Distance(c.template), nil
}

func (c *ShapeClassifier) Threshold() float64 { return c.threshold }

func (c *ShapeClassifier) Strategy() Strategy { return StrategyShape }

// PixelClassifier scores by the weighted count of differing binarized pixels.
type PixelClassifier struct {
	region
	// Binarized template. The classifier holds no Mat.
	template  *image.Gray
	cutoff    uint8
	threshold float64
}

// NewPixel builds a pixel classifier; template must have the ROI's size.
func NewPixel(template image.Image, roi image.Rectangle, cutoff uint8, threshold float64) (*PixelClassifier, error) {
	if err := checkTemplateSize(template, roi); err != nil {
		return nil, err
	}
	m, err := templateMat(template)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	bin := imageops.Binarize(m, cutoff)
	defer bin.Close()
	binarized, err := imageops.MatToGray(bin)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "binarize template", "", err)
	}
	return &PixelClassifier{
		region:    region{roi: roi},
		template:  binarized,
		cutoff:    cutoff,
		threshold: threshold,
	}, nil
}

func (c *PixelClassifier) Score(img image.Image) (float64, error) {
	m, err := c.mat(img)
	if err != nil {
		return 0, err
	}
	defer m.Close()
	bin := imageops.Binarize(m, c.cutoff)
	defer bin.Close()
	tmpl, err := imageops.GrayMat(c.template)
	if err != nil {
		return 0, pipeline.Wrap(pipeline.ErrValidation, pipeline.StageClassify, "convert template", "", err)
	}
	defer tmpl.Close()
	return imageops.DiffSum(bin, tmpl)
}

func (c *PixelClassifier) Threshold() float64 { return c.threshold }

func (c *PixelClassifier) Strategy() Strategy { return StrategyPixel }
