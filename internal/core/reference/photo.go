// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/textnorm"
)

const (
	msgPhotoCollectionRequired = "Reference must have photo collection data"
	msgMissingLocation         = "Missing photo collection location"
	msgMissingMedia            = "Missing photo collection media"
)

// createPhotoCollection validates a photo collection payload; no associations are involved.
func createPhotoCollection(in *PhotoCollectionInput) (*PhotoCollection, error) {
	if in == nil {
		return nil, apperr.MissingRequiredData(msgPhotoCollectionRequired)
	}
	if textnorm.Blank(in.Location) {
		return nil, apperr.MissingRequiredData(msgMissingLocation)
	}
	if textnorm.Blank(in.Media) {
		return nil, apperr.MissingRequiredData(msgMissingMedia)
	}

	return &PhotoCollection{Location: *in.Location, Media: *in.Media}, nil
}

// updatePhotoCollection applies any subset of location and media. A given field must not be blank.
func updatePhotoCollection(current *PhotoCollection, in *PhotoCollectionInput) (*PhotoCollection, error) {
	photo := *current

	if in.Location != nil {
		if textnorm.Blank(in.Location) {
			return nil, apperr.MissingRequiredData(msgMissingLocation)
		}
		photo.Location = *in.Location
	}
	if in.Media != nil {
		if textnorm.Blank(in.Media) {
			return nil, apperr.MissingRequiredData(msgMissingMedia)
		}
		photo.Media = *in.Media
	}

	return &photo, nil
}
