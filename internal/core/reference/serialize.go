// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"time"

	"github.com/taibuivan/refcatalog/pkg/slice"
)

// # Wire Shape
//
// Associations that were not loaded are omitted (omitzero on a nil slice or
// pointer); loaded but empty lists are kept as [].

// View is the serialized form of a Reference.
type View struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Language        *string   `json:"language"`
	ReferenceTypeID Type      `json:"referenceTypeId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Book            *BookView            `json:"book,omitzero"`
	MagazineFeature *MagazineFeatureView `json:"magazineFeature,omitzero"`
	PhotoCollection *PhotoCollectionView `json:"photoCollection,omitzero"`

	Authors []AuthorView `json:"authors,omitzero"`
	Tags    []TagView    `json:"tags,omitzero"`
}

type BookView struct {
	ISBN         *string        `json:"isbn"`
	SeriesNumber *int           `json:"seriesNumber"`
	PublisherID  *int64         `json:"publisherId"`
	SeriesID     *int64         `json:"seriesId"`
	Publisher    *PublisherView `json:"publisher,omitzero"`
	Series       *SeriesView    `json:"series,omitzero"`
}

type MagazineFeatureView struct {
	MagazineIssueID int64              `json:"magazineIssueId"`
	MagazineIssue   *MagazineIssueView `json:"magazineIssue,omitzero"`
	FeatureTags     []FeatureTagView   `json:"featureTags,omitzero"`
}

type PhotoCollectionView struct {
	Location string `json:"location"`
	Media    string `json:"media"`
}

type AuthorView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TagView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

type PublisherView struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}

type SeriesView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Notes       *string `json:"notes"`
	PublisherID *int64  `json:"publisherId"`
}

type MagazineIssueView struct {
	ID         int64         `json:"id"`
	Issue      string        `json:"issue"`
	MagazineID int64         `json:"magazineId"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Magazine   *MagazineView `json:"magazine,omitzero"`
}

type MagazineView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Language  *string   `json:"language"`
	Aliases   []string  `json:"aliases"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FeatureTagView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Serialize converts a loaded aggregate into its wire shape. Exactly one of the
// sub-type fields is set, chosen by the attached body.
func Serialize(ref *Reference) *View {
	view := &View{
		ID:              ref.ID,
		Name:            ref.Name,
		Language:        ref.Language,
		ReferenceTypeID: ref.TypeID,
		CreatedAt:       ref.CreatedAt,
		UpdatedAt:       ref.UpdatedAt,
		Authors:         slice.Map(ref.Authors, serializeAuthor),
		Tags:            slice.Map(ref.Tags, serializeTag),
	}

	switch body := ref.Body.(type) {
	case *Book:
		view.Book = serializeBook(body)
	case *MagazineFeature:
		view.MagazineFeature = serializeMagazineFeature(body)
	case *PhotoCollection:
		view.PhotoCollection = &PhotoCollectionView{Location: body.Location, Media: body.Media}
	}

	return view
}

// SerializeAll converts a list of aggregates.
func SerializeAll(refs []*Reference) []*View {
	views := slice.Map(refs, Serialize)
	if views == nil {
		views = []*View{}
	}
	return views
}

func serializeBook(book *Book) *BookView {
	view := &BookView{
		ISBN:         book.ISBN,
		SeriesNumber: book.SeriesNumber,
		PublisherID:  book.PublisherID,
		SeriesID:     book.SeriesID,
	}
	if book.Publisher != nil {
		view.Publisher = &PublisherView{ID: book.Publisher.ID, Name: book.Publisher.Name, Notes: book.Publisher.Notes}
	}
	if book.Series != nil {
		view.Series = &SeriesView{
			ID:          book.Series.ID,
			Name:        book.Series.Name,
			Notes:       book.Series.Notes,
			PublisherID: book.Series.PublisherID,
		}
	}
	return view
}

func serializeMagazineFeature(feature *MagazineFeature) *MagazineFeatureView {
	view := &MagazineFeatureView{
		MagazineIssueID: feature.MagazineIssueID,
		FeatureTags: slice.Map(feature.FeatureTags, func(tag FeatureTag) FeatureTagView {
			return FeatureTagView{ID: tag.ID, Name: tag.Name, Description: tag.Description}
		}),
	}

	if issue := feature.MagazineIssue; issue != nil {
		view.MagazineIssue = &MagazineIssueView{
			ID:         issue.ID,
			Issue:      issue.Issue,
			MagazineID: issue.MagazineID,
			CreatedAt:  issue.CreatedAt,
			UpdatedAt:  issue.UpdatedAt,
		}
		if magazine := issue.Magazine; magazine != nil {
			view.MagazineIssue.Magazine = &MagazineView{
				ID:        magazine.ID,
				Name:      magazine.Name,
				Language:  magazine.Language,
				Aliases:   magazine.Aliases,
				Notes:     magazine.Notes,
				CreatedAt: magazine.CreatedAt,
				UpdatedAt: magazine.UpdatedAt,
			}
		}
	}

	return view
}

func serializeAuthor(author Author) AuthorView {
	return AuthorView{ID: author.ID, Name: author.Name, CreatedAt: author.CreatedAt, UpdatedAt: author.UpdatedAt}
}

func serializeTag(tag Tag) TagView {
	return TagView{ID: tag.ID, Name: tag.Name, Type: tag.Type, Description: tag.Description}
}
