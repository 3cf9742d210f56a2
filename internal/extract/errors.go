package extract

import "errors"

// RepairFailedError reports that model output never validated against the
// extraction schema, even after the single repair pass. The owning message is
// kept in the relational store without facts so it can be reprocessed later.
type RepairFailedError struct {
	Detail string
}

func (e *RepairFailedError) Error() string {
	return "extraction output failed schema validation after repair: " + e.Detail
}

// IsRepairFailed reports whether err is (or wraps) a RepairFailedError
func IsRepairFailed(err error) bool {
	var target *RepairFailedError
	return errors.As(err, &target)
}
