package event

import (
	"annotator-go/domain/annotation"
	"annotator-go/domain/correspondence"
)

// FramesLoaded is published when a directory's frames are bound to the session.
type FramesLoaded struct {
	baseRunEvent
	Dir   string
	Count int
}

func NewFramesLoaded(runID, dir string, count int) *FramesLoaded {
	return &FramesLoaded{
		baseRunEvent: baseRunEvent{runID: runID},
		Dir:          dir,
		Count:        count,
	}
}

func (e *FramesLoaded) EventName() string {
	return "FramesLoaded"
}

// FramesRejected is published when a directory has fewer than two images.
type FramesRejected struct {
	baseRunEvent
	Dir   string
	Count int
	Error error
}

func NewFramesRejected(runID, dir string, count int, err error) *FramesRejected {
	return &FramesRejected{
		baseRunEvent: baseRunEvent{runID: runID},
		Dir:          dir,
		Count:        count,
		Error:        err,
	}
}

func (e *FramesRejected) EventName() string {
	return "FramesRejected"
}

// PointPending is published when a half-correspondence is captured on frame A.
type PointPending struct {
	baseRunEvent
	Frame int
	Point correspondence.Point
}

func NewPointPending(runID string, frame int, p correspondence.Point) *PointPending {
	return &PointPending{
		baseRunEvent: baseRunEvent{runID: runID},
		Frame:        frame,
		Point:        p,
	}
}

func (e *PointPending) EventName() string {
	return "PointPending"
}

// CorrespondenceRecorded is published when a correspondence is completed.
type CorrespondenceRecorded struct {
	baseRunEvent
	Record correspondence.Record
}

func NewCorrespondenceRecorded(runID string, rec correspondence.Record) *CorrespondenceRecorded {
	return &CorrespondenceRecorded{
		baseRunEvent: baseRunEvent{runID: runID},
		Record:       rec,
	}
}

func (e *CorrespondenceRecorded) EventName() string {
	return "CorrespondenceRecorded"
}

// DuplicateRejected is published when a click lands too close to a recorded point.
type DuplicateRejected struct {
	baseRunEvent
	Side     annotation.Side
	Frame    int
	Point    correspondence.Point
	Existing correspondence.Point
}

func NewDuplicateRejected(runID string, dup *annotation.DuplicateError) *DuplicateRejected {
	return &DuplicateRejected{
		baseRunEvent: baseRunEvent{runID: runID},
		Side:         dup.Side,
		Frame:        dup.Frame,
		Point:        dup.Clicked,
		Existing:     dup.Existing,
	}
}

func (e *DuplicateRejected) EventName() string {
	return "DuplicateRejected"
}
