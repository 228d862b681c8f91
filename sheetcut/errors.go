package sheetcut

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoRegions is returned when detection and filtering leave nothing to process.
	ErrNoRegions = errors.New("no sticker regions to process")
	// ErrDegenerateMatte is reported for a region whose matte has no pixel above the noise floor.
	ErrDegenerateMatte = errors.New("matte has no pixels above the noise floor")
)
