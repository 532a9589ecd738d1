package encoder

import (
	"encoding/binary"
	"io"
)

const (
	tgaTrueColour = 2    // uncompressed true-colour image
	tgaTopLeft    = 0x20 // rows are stored top to bottom
	tgaMaxSide    = 0xffff
)

// TGAEncoder writes uncompressed 32-bit Truevision TGA files.
type TGAEncoder struct{}

func (TGAEncoder) Extension() string { return "tga" }

func (TGAEncoder) MaxSide() int { return tgaMaxSide }

func (TGAEncoder) Encode(path string, width, height, channels int, pix []byte) error {
	if err := checkBuffer(width, height, channels, pix); err != nil {
		return err
	}
	if err := CheckSize(TGAEncoder{}, width, height); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return writeTGA(w, width, height, pix)
	})
}

func writeTGA(w io.Writer, width, height int, pix []byte) error {
	var header [18]byte
	header[2] = tgaTrueColour
	binary.LittleEndian.PutUint16(header[12:], uint16(width))
	binary.LittleEndian.PutUint16(header[14:], uint16(height))
	header[16] = 32
	header[17] = tgaTopLeft | 8 // 8 alpha bits
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	// TGA stores BGRA.
	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		src := pix[y*width*4 : (y+1)*width*4]
		for i := 0; i < len(src); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = src[i+2], src[i+1], src[i], src[i+3]
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
