package models

import "fmt"

// Phase is the fine-grained step a task is in, reported as detailed_status.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseInitiated
	PhaseExtractingInfo
	PhaseExtractingPlaylist
	PhaseExtractingChannel
	PhaseProcessingVideo
	PhaseCheckingExists
	PhaseDownloading
	PhaseUploading
	PhaseSendingToAPI
)

func (p Phase) String() string {
	switch p {
	case PhaseInitiated:
		return "initiated"
	case PhaseExtractingInfo:
		return "extracting_info"
	case PhaseExtractingPlaylist:
		return "extracting_playlist"
	case PhaseExtractingChannel:
		return "extracting_channel"
	case PhaseProcessingVideo:
		return "processing_video"
	case PhaseCheckingExists:
		return "checking_exists"
	case PhaseDownloading:
		return "downloading"
	case PhaseUploading:
		return "uploading"
	case PhaseSendingToAPI:
		return "sending_to_api"
	default:
		return ""
	}
}

// MarshalText encodes the phase as its tag.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a tag produced by [Phase.MarshalText].
func (p *Phase) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" {
		*p = PhaseNone
		return nil
	}
	for c := PhaseInitiated; c <= PhaseSendingToAPI; c++ {
		if c.String() == s {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}
