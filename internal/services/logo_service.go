package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"
)

// MaxLogoDimension es el lado máximo permitido del logo en píxeles
const MaxLogoDimension = 600

// LogoService valida imágenes de logo y las convierte a data URL
type LogoService struct {
	logger *logrus.Logger
}

// NewLogoService crea una nueva instancia del servicio
func NewLogoService(logger *logrus.Logger) *LogoService {
	return &LogoService{
		logger: logger,
	}
}

// ProcessLogo valida los bytes recibidos como imagen PNG o JPEG dentro
// del límite de dimensiones y retorna el data URL resultante junto a
// las dimensiones. Si la imagen es inválida el logo almacenado no se
// toca: el error describe la causa para que el llamador la reporte.
func (s *LogoService) ProcessLogo(data []byte) (string, int, int, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("unrecognized image data: %w", err)
	}

	if format != "png" && format != "jpeg" {
		return "", 0, 0, fmt.Errorf("unsupported image format: %s (use PNG or JPEG)", format)
	}

	if cfg.Width > MaxLogoDimension || cfg.Height > MaxLogoDimension {
		return "", 0, 0, fmt.Errorf("image is %dx%d px, maximum allowed is %dx%d", cfg.Width, cfg.Height, MaxLogoDimension, MaxLogoDimension)
	}

	mime := "image/png"
	if format == "jpeg" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	s.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  cfg.Width,
		"height": cfg.Height,
		"bytes":  len(data),
	}).Info("Logo processed")

	return dataURL, cfg.Width, cfg.Height, nil
}
