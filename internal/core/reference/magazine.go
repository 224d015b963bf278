// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/textnorm"
)

// Magazine feature resolution messages. Create and update keep their own wording.
const (
	msgMagazineFeatureRequired    = "Reference must have magazine feature data"
	msgIssueRequired              = "magazineFeature requires either magazineIssue or magazineIssueId"
	msgFeatureTagsEmptyCreate     = "featureTags cannot be an empty array"
	msgFeatureTagsEmptyUpdate     = "featureTags cannot be empty if given"
	msgMagazineIDAlone            = "magazineId by itself is not allowed"
	msgMagazineIDExistingIssue    = "magazineId conflicts with existing magazineIssueId"
	msgMagazineIDIssueID          = "magazineId conflicts with magazineIssueId"
	msgNewIssueMagazineID         = "new magazineIssue data magazineId conflicts with magazineId"
	msgNewIssueExistingMagazineID = "new magazineIssue data magazineId conflicts with existing magazineId"
	msgNewIssueNewMagazine        = "new magazineIssue data magazineId conflicts with new magazine data"
	msgMagazineWithIssueIDCreate  = "magazine with magazineIssueId is not allowed"
	msgMagazineWithIssueIDUpdate  = "magazine cannot be combined with magazineIssueId"
	msgMagazineNeedsIssue         = "magazine requires either magazineIssue or magazineIssueId"
	msgIssueNeedsMagazine         = "magazineIssue requires either magazine or magazineId"
	msgMissingMagazineName        = "Missing new magazine name"
	msgMissingIssue               = "Missing new magazineIssue issue"
	msgMagazineBothForms          = "Cannot specify both `magazineId` and new `magazine` data"
	msgMagazineIssueBothForms     = "Cannot specify both `magazineIssueId` and new `magazineIssue` data"
)

// magazineShape is one cell of the magazine × issue decision table.
type magazineShape struct {
	magazine form
	issue    form
}

func classifyMagazineFeature(in *MagazineFeatureInput) (magazineShape, error) {
	var shape magazineShape

	switch {
	case in.MagazineID != nil && in.Magazine != nil:
		return shape, apperr.InvalidCombination(msgMagazineBothForms)
	case in.MagazineID != nil:
		shape.magazine = formID
	case in.Magazine != nil:
		shape.magazine = formInline
	}

	switch {
	case in.MagazineIssueID != nil && in.MagazineIssue != nil:
		return shape, apperr.InvalidCombination(msgMagazineIssueBothForms)
	case in.MagazineIssueID != nil:
		shape.issue = formID
	case in.MagazineIssue != nil:
		shape.issue = formInline
	}

	return shape, nil
}

// magazineResolver resolves magazine/issue combinations and feature tags.
type magazineResolver struct {
	repo         Repository
	associations associationResolver
}

// resolvedFeature is a magazine feature row plus its ordered feature tag ids.
// A nil FeatureTagIDs leaves the stored set untouched.
type resolvedFeature struct {
	Feature       *MagazineFeature
	FeatureTagIDs []int64
}

/*
create resolves a magazine feature payload for a new reference.

Returns:
  - resolvedFeature: issue id and the non-empty feature tag ids
  - error: classified resolution error
*/
func (resolver magazineResolver) create(ctx context.Context, in *MagazineFeatureInput) (resolvedFeature, error) {
	if in == nil {
		return resolvedFeature{}, apperr.MissingRequiredData(msgMagazineFeatureRequired)
	}
	if len(in.FeatureTags) == 0 {
		return resolvedFeature{}, apperr.EmptyCollection(msgFeatureTagsEmptyCreate)
	}

	shape, err := classifyMagazineFeature(in)
	if err != nil {
		return resolvedFeature{}, err
	}

	var issueID int64

	switch shape {

	case magazineShape{formAbsent, formAbsent}:
		return resolvedFeature{}, apperr.MissingRequiredData(msgIssueRequired)

	// Existing issue: the magazine is implied
	case magazineShape{formAbsent, formID}:
		issue, err := resolver.findIssue(ctx, *in.MagazineIssueID)
		if err != nil {
			return resolvedFeature{}, err
		}
		issueID = issue.ID

	case magazineShape{formID, formAbsent}:
		return resolvedFeature{}, apperr.InvalidCombination(msgMagazineIDAlone)

	case magazineShape{formID, formID}:
		issue, err := resolver.issueOfMagazine(ctx, *in.MagazineIssueID, *in.MagazineID, msgMagazineIDIssueID)
		if err != nil {
			return resolvedFeature{}, err
		}
		issueID = issue.ID

	// New issue under an existing magazine
	case magazineShape{formID, formInline}:
		if in.MagazineIssue.MagazineID != nil && *in.MagazineIssue.MagazineID != *in.MagazineID {
			return resolvedFeature{}, apperr.ConflictingAssociation(msgNewIssueMagazineID)
		}
		if issueID, err = resolver.newIssue(ctx, in.MagazineIssue, *in.MagazineID); err != nil {
			return resolvedFeature{}, err
		}

	case magazineShape{formInline, formID}:
		return resolvedFeature{}, apperr.InvalidCombination(msgMagazineWithIssueIDCreate)

	case magazineShape{formInline, formAbsent}:
		return resolvedFeature{}, apperr.InvalidCombination(msgMagazineNeedsIssue)

	// New issue alone: only allowed when it names its own magazine
	case magazineShape{formAbsent, formInline}:
		if in.MagazineIssue.MagazineID == nil {
			return resolvedFeature{}, apperr.InvalidCombination(msgIssueNeedsMagazine)
		}
		if issueID, err = resolver.newIssue(ctx, in.MagazineIssue, *in.MagazineIssue.MagazineID); err != nil {
			return resolvedFeature{}, err
		}

	case magazineShape{formInline, formInline}:
		if issueID, err = resolver.newMagazineAndIssue(ctx, in.Magazine, in.MagazineIssue); err != nil {
			return resolvedFeature{}, err
		}

	default:
		return resolvedFeature{}, apperr.Internal(fmt.Errorf("reference: unhandled magazine shape %+v", shape))
	}

	tagIDs, err := resolver.associations.featureTags(ctx, in.FeatureTags)
	if err != nil {
		return resolvedFeature{}, err
	}

	return resolvedFeature{
		Feature:       &MagazineFeature{MagazineIssueID: issueID},
		FeatureTagIDs: tagIDs,
	}, nil
}

/*
update applies a magazine feature payload onto the current row.

Description: With no issue info the stored issue is kept. A bare magazineId
must match the stored issue's magazine, and a new issue without magazine info
is created under the stored issue's magazine. Feature tags are replaced only
when given, and then must not be empty.
*/
func (resolver magazineResolver) update(ctx context.Context, current *MagazineFeature, in *MagazineFeatureInput) (resolvedFeature, error) {
	if in.FeatureTags != nil && len(in.FeatureTags) == 0 {
		return resolvedFeature{}, apperr.EmptyCollection(msgFeatureTagsEmptyUpdate)
	}

	shape, err := classifyMagazineFeature(in)
	if err != nil {
		return resolvedFeature{}, err
	}

	issueID := current.MagazineIssueID

	switch shape {

	case magazineShape{formAbsent, formAbsent}:
		// keep the stored issue

	case magazineShape{formAbsent, formID}:
		issue, err := resolver.findIssue(ctx, *in.MagazineIssueID)
		if err != nil {
			return resolvedFeature{}, err
		}
		issueID = issue.ID

	// Bare magazineId is accepted only as a restatement of the stored issue's magazine
	case magazineShape{formID, formAbsent}:
		if _, err := resolver.issueOfMagazine(ctx, current.MagazineIssueID, *in.MagazineID, msgMagazineIDExistingIssue); err != nil {
			return resolvedFeature{}, err
		}

	case magazineShape{formID, formID}:
		issue, err := resolver.issueOfMagazine(ctx, *in.MagazineIssueID, *in.MagazineID, msgMagazineIDIssueID)
		if err != nil {
			return resolvedFeature{}, err
		}
		issueID = issue.ID

	case magazineShape{formID, formInline}:
		if in.MagazineIssue.MagazineID != nil && *in.MagazineIssue.MagazineID != *in.MagazineID {
			return resolvedFeature{}, apperr.ConflictingAssociation(msgNewIssueMagazineID)
		}
		if issueID, err = resolver.newIssue(ctx, in.MagazineIssue, *in.MagazineID); err != nil {
			return resolvedFeature{}, err
		}

	case magazineShape{formInline, formID}:
		return resolvedFeature{}, apperr.InvalidCombination(msgMagazineWithIssueIDUpdate)

	case magazineShape{formInline, formAbsent}:
		return resolvedFeature{}, apperr.InvalidCombination(msgMagazineNeedsIssue)

	// New issue alone: created under the stored issue's magazine
	case magazineShape{formAbsent, formInline}:
		existing, err := resolver.findIssue(ctx, current.MagazineIssueID)
		if err != nil {
			return resolvedFeature{}, err
		}
		if in.MagazineIssue.MagazineID != nil && *in.MagazineIssue.MagazineID != existing.MagazineID {
			return resolvedFeature{}, apperr.ConflictingAssociation(msgNewIssueExistingMagazineID)
		}
		if issueID, err = resolver.newIssue(ctx, in.MagazineIssue, existing.MagazineID); err != nil {
			return resolvedFeature{}, err
		}

	case magazineShape{formInline, formInline}:
		if issueID, err = resolver.newMagazineAndIssue(ctx, in.Magazine, in.MagazineIssue); err != nil {
			return resolvedFeature{}, err
		}

	default:
		return resolvedFeature{}, apperr.Internal(fmt.Errorf("reference: unhandled magazine shape %+v", shape))
	}

	var tagIDs []int64
	if in.FeatureTags != nil {
		if tagIDs, err = resolver.associations.featureTags(ctx, in.FeatureTags); err != nil {
			return resolvedFeature{}, err
		}
	}

	return resolvedFeature{
		Feature:       &MagazineFeature{ReferenceID: current.ReferenceID, MagazineIssueID: issueID},
		FeatureTagIDs: tagIDs,
	}, nil
}

// # Resolution Steps

func (resolver magazineResolver) findIssue(ctx context.Context, id int64) (*MagazineIssue, error) {
	issue, err := resolver.repo.FindMagazineIssue(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "MagazineIssue", id)
	}
	return issue, nil
}

// issueOfMagazine loads an issue and checks it belongs to magazineID.
func (resolver magazineResolver) issueOfMagazine(ctx context.Context, issueID, magazineID int64, mismatch string) (*MagazineIssue, error) {
	issue, err := resolver.findIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.MagazineID != magazineID {
		return nil, apperr.ConflictingAssociation(mismatch)
	}
	return issue, nil
}

// newIssue creates an issue under an existing magazine.
func (resolver magazineResolver) newIssue(ctx context.Context, in *MagazineIssueInput, magazineID int64) (int64, error) {
	if textnorm.Blank(in.Issue) {
		return 0, apperr.MissingRequiredData(msgMissingIssue)
	}
	if _, err := resolver.repo.FindMagazine(ctx, magazineID); err != nil {
		return 0, notFoundAs(err, "Magazine", magazineID)
	}

	issue := &MagazineIssue{Issue: textnorm.Name(*in.Issue), MagazineID: magazineID, CreatedAt: resolver.associations.now, UpdatedAt: resolver.associations.now}
	if err := resolver.repo.CreateMagazineIssue(ctx, issue); err != nil {
		return 0, err
	}
	return issue.ID, nil
}

// newMagazineAndIssue creates a magazine and its first referenced issue.
// Both required fields are checked before either row is written.
func (resolver magazineResolver) newMagazineAndIssue(ctx context.Context, magazineIn *MagazineInput, issueIn *MagazineIssueInput) (int64, error) {
	if textnorm.Blank(magazineIn.Name) {
		return 0, apperr.MissingRequiredData(msgMissingMagazineName)
	}
	if textnorm.Blank(issueIn.Issue) {
		return 0, apperr.MissingRequiredData(msgMissingIssue)
	}
	if issueIn.MagazineID != nil {
		return 0, apperr.ConflictingAssociation(msgNewIssueNewMagazine)
	}

	aliases := magazineIn.Aliases
	if aliases == nil {
		aliases = []string{}
	}

	now := resolver.associations.now
	magazine := &Magazine{
		Name:      textnorm.Name(*magazineIn.Name),
		Language:  magazineIn.Language,
		Aliases:   aliases,
		Notes:     magazineIn.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := resolver.repo.CreateMagazine(ctx, magazine); err != nil {
		return 0, err
	}

	return resolver.newIssue(ctx, issueIn, magazine.ID)
}
