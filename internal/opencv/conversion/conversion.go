package conversion

import (
	"fmt"
	"image"
	"image/color"

	"texture-extractor/internal/models"
	"texture-extractor/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 1:
		return src.Clone()
	case 3:
		code = gocv.ColorBGRToGray
	case 4:
		code = gocv.ColorBGRAToGray
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, err
	}

	dst := safe.NewEmpty()
	gocv.CvtColor(src.GetMat(), dst.Ptr(), code)
	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("grayscale conversion produced an empty Mat")
	}

	return dst, nil
}

// ImageToGrid converts a decoded image to a grid through OpenCV's BGR to gray
// conversion. It has the signature of a pipeline gray converter.
func ImageToGrid(img image.Image) (*models.Grid, error) {
	if gray, ok := img.(*image.Gray); ok {
		return models.GridFromImage(gray)
	}

	mat, err := ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray, err := ConvertToGrayscale(mat)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	return MatToGrid(gray)
}

// GridToMat copies g into a new single-channel Mat.
func GridToMat(g *models.Grid) (*safe.Mat, error) {
	if err := g.Validate("grid to Mat conversion"); err != nil {
		return nil, err
	}
	return safe.NewMatFromBytes(g.Height, g.Width, 1, g.Pix)
}

// MatToGrid copies a single-channel 8-bit Mat into a new grid.
func MatToGrid(src *safe.Mat) (*models.Grid, error) {
	if err := safe.ValidateGray(src, "Mat to grid conversion"); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidImage, err)
	}

	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	return models.GridFromPix(src.Cols(), src.Rows(), data)
}

// MatToImage converts GoCV Mat to standard Go image
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()

	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(img.Pix, data)
		return img, nil
	case 3:
		img := image.NewRGBA(image.Rect(0, 0, cols, rows))
		for i, j := 0, 0; i < len(data); i, j = i+3, j+4 {
			img.Pix[j] = data[i+2]
			img.Pix[j+1] = data[i+1]
			img.Pix[j+2] = data[i]
			img.Pix[j+3] = 255
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// ImageToMat converts standard Go image to a BGR Mat
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: input image is nil", models.ErrInvalidImage)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if err := safe.ValidateDimensions(width, height, "image to Mat conversion"); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidImage, err)
	}

	data := make([]byte, 0, width*height*3)

	switch typedImg := img.(type) {
	case *image.RGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				p := typedImg.RGBAAt(x, y)
				data = append(data, p.B, p.G, p.R)
			}
		}
	case *image.NRGBA:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				p := color.RGBAModel.Convert(typedImg.NRGBAAt(x, y)).(color.RGBA)
				data = append(data, p.B, p.G, p.R)
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				data = append(data, uint8(b>>8), uint8(g>>8), uint8(r>>8))
			}
		}
	}

	return safe.NewMatFromBytes(height, width, 3, data)
}
