package harness

import (
	"strings"

	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/pkg/errors"
)

// Snapshot summary keys asserted by the validators.
const (
	SummaryChangedPartitionCount = "changed-partition-count"
	SummaryDeletedDataFiles      = "deleted-data-files"
	SummaryAddedDeleteFiles      = "added-delete-files"
	SummaryAddedDataFiles        = "added-data-files"
)

type expectKind int

const (
	expectUnconstrained expectKind = iota
	expectExact
	expectAnyOf
	expectAbsent
)

// Expect states what a validator should require of one snapshot summary
// metric. The zero value is Unconstrained.
type Expect struct {
	kind   expectKind
	value  string
	values []string
}

// Exact requires the metric to be present with exactly this value.
func Exact(v string) Expect {
	return Expect{kind: expectExact, value: v}
}

// AnyOf requires the metric to be present with one of these values.
func AnyOf(vs ...string) Expect {
	return Expect{kind: expectAnyOf, values: vs}
}

// Absent requires the metric key to be missing from the summary.
func Absent() Expect {
	return Expect{kind: expectAbsent}
}

// Unconstrained skips the metric entirely.
func Unconstrained() Expect {
	return Expect{}
}

// ValidateSnapshot asserts the snapshot's operation and its four summary
// metrics. Metrics passed as Unconstrained are not inspected.
func ValidateSnapshot(s *table.Snapshot, op table.Operation, changedPartitions, deletedDataFiles, addedDeleteFiles, addedDataFiles Expect) error {
	if s == nil || s.Summary == nil {
		return errors.New(ErrOperationMismatch, "snapshot has no summary", nil)
	}

	if s.Summary.Operation != op {
		return errors.Newf(ErrOperationMismatch, "operation has unexpected value, actual = %s, expected = %s",
			s.Summary.Operation, op).
			AddContext("actual", string(s.Summary.Operation)).
			AddContext("expected", string(op))
	}

	if err := ValidateProperty(s, SummaryChangedPartitionCount, changedPartitions); err != nil {
		return err
	}
	if err := ValidateProperty(s, SummaryDeletedDataFiles, deletedDataFiles); err != nil {
		return err
	}
	if err := ValidateProperty(s, SummaryAddedDeleteFiles, addedDeleteFiles); err != nil {
		return err
	}

	return ValidateProperty(s, SummaryAddedDataFiles, addedDataFiles)
}

// ValidateDelete asserts a delete snapshot. Only the changed partition count
// and the deleted data file count are constrained.
func ValidateDelete(s *table.Snapshot, changedPartitions, deletedDataFiles string) error {
	return ValidateSnapshot(s, table.OpDelete, Exact(changedPartitions), Exact(deletedDataFiles), Unconstrained(), Unconstrained())
}

// ValidateCopyOnWrite asserts an overwrite snapshot produced by a
// copy-on-write mutation: rewritten files surface as deleted plus added data
// files.
func ValidateCopyOnWrite(s *table.Snapshot, changedPartitions, deletedDataFiles, addedDataFiles string) error {
	return ValidateSnapshot(s, table.OpOverwrite, Exact(changedPartitions), Exact(deletedDataFiles), Unconstrained(), Exact(addedDataFiles))
}

// ValidateMergeOnRead asserts an overwrite snapshot produced by a
// merge-on-read mutation: changes surface as added delete files plus added
// data files.
func ValidateMergeOnRead(s *table.Snapshot, changedPartitions, addedDeleteFiles, addedDataFiles string) error {
	return ValidateSnapshot(s, table.OpOverwrite, Exact(changedPartitions), Unconstrained(), Exact(addedDeleteFiles), Exact(addedDataFiles))
}

// ValidateProperty asserts one snapshot summary property against exp.
func ValidateProperty(s *table.Snapshot, prop string, exp Expect) error {
	if s == nil || s.Summary == nil {
		return errors.New(ErrMetricMismatch, "snapshot has no summary", nil)
	}

	actual, ok := s.Summary.Properties[prop]

	switch exp.kind {
	case expectUnconstrained:
		return nil

	case expectExact:
		if !ok {
			return errors.Newf(ErrMetricMismatch, "snapshot property %s is missing, expected = %s", prop, exp.value).
				AddContext("property", prop).
				AddContext("expected", exp.value)
		}
		if actual != exp.value {
			return errors.Newf(ErrMetricMismatch, "snapshot property %s has unexpected value, actual = %s, expected = %s",
				prop, actual, exp.value).
				AddContext("property", prop).
				AddContext("actual", actual).
				AddContext("expected", exp.value)
		}

	case expectAnyOf:
		if !ok {
			return errors.Newf(ErrMetricMismatch, "snapshot property %s is missing, expected one of: %s",
				prop, strings.Join(exp.values, ",")).
				AddContext("property", prop).
				AddContext("expected", strings.Join(exp.values, ","))
		}
		for _, v := range exp.values {
			if actual == v {
				return nil
			}
		}
		return errors.Newf(ErrMetricMismatch, "snapshot property %s has unexpected value, actual = %s, expected one of: %s",
			prop, actual, strings.Join(exp.values, ",")).
			AddContext("property", prop).
			AddContext("actual", actual).
			AddContext("expected", strings.Join(exp.values, ","))

	case expectAbsent:
		if ok {
			return errors.Newf(ErrMetricMismatch, "snapshot property %s expected to be absent, actual = %s", prop, actual).
				AddContext("property", prop).
				AddContext("actual", actual)
		}
	}

	return nil
}
