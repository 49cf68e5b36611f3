package triage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dermassist/skin-triage-platform/internal/appointments"
	"github.com/dermassist/skin-triage-platform/internal/classifier"
	"github.com/dermassist/skin-triage-platform/internal/hospital"
	"github.com/dermassist/skin-triage-platform/internal/imagestore"
	"github.com/dermassist/skin-triage-platform/internal/observability/metrics"
	"github.com/dermassist/skin-triage-platform/internal/predictions"
	"github.com/dermassist/skin-triage-platform/internal/risk"
	"github.com/dermassist/skin-triage-platform/internal/users"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

var triageTracer = otel.Tracer("dermassist.internal.triage")

// Step status values. Degraded steps are logged and counted but never fail
// the request; only classification is fatal.
const (
	StepOK       = "ok"
	StepDegraded = "degraded"
	StepSkipped  = "skipped"
)

// Pipeline step names, in execution order.
const (
	StepReceived             = "received"
	StepClassified           = "classified"
	StepPersisted            = "persisted"
	StepAppointmentCreated   = "appointment_created"
	StepHospitalAttempted    = "hospital_attempted"
	StepAppointmentPersisted = "appointment_persisted"
	StepNotified             = "notified"
)

// StepResult records how one pipeline step went.
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// Outcome is the full result of one triage request. Result is always set on
// success; Appointment is set only when the risk policy fired.
type Outcome struct {
	Result      *classifier.Result        `json:"result"`
	Prediction  *predictions.Prediction   `json:"prediction,omitempty"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"`
	Actionable  bool                      `json:"actionable"`
	Steps       []StepResult              `json:"steps"`
}

// Classifier is the model surface the orchestrator needs.
type Classifier interface {
	Predict(ctx context.Context, img image.Image) (*classifier.Result, error)
	ModelVersion() string
}

// Booker posts appointments to the external hospital API.
type Booker interface {
	Book(ctx context.Context, appt *appointments.Appointment) (*hospital.BookingResult, error)
}

// Notifier delivers patient confirmations. Both operations are best effort.
type Notifier interface {
	NotifyByVoice(ctx context.Context, appt *appointments.Appointment)
	NotifyByMessaging(ctx context.Context, appt *appointments.Appointment)
}

// Service runs the triage pipeline for one uploaded image.
type Service struct {
	classifier   Classifier
	policy       *risk.Policy
	predictions  predictions.Repository
	appointments appointments.Repository
	hospital     Booker
	notifier     Notifier
	cache        *predictions.ResultCache
	images       imagestore.Store
	metrics      *metrics.TriageMetrics
	logger       *logging.Logger
}

// NewService wires the pipeline. hospital, notifier, cache, images and
// metrics may be nil; the corresponding steps then degrade or are skipped.
func NewService(
	cls Classifier,
	policy *risk.Policy,
	predRepo predictions.Repository,
	apptRepo appointments.Repository,
	booker Booker,
	notifier Notifier,
	cache *predictions.ResultCache,
	images imagestore.Store,
	m *metrics.TriageMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if policy == nil {
		policy = risk.NewPolicy(nil, 0)
	}
	return &Service{
		classifier:   cls,
		policy:       policy,
		predictions:  predRepo,
		appointments: apptRepo,
		hospital:     booker,
		notifier:     notifier,
		cache:        cache,
		images:       images,
		metrics:      m,
		logger:       logger,
	}
}

// ProcessImage runs one image through classify, persist, decide, book and
// notify. Only classification failure returns an error; every later step is
// caught, logged and recorded in the outcome. The classification result is
// returned to the caller regardless of what happens after the decision point.
func (s *Service) ProcessImage(ctx context.Context, user *users.User, imageBytes []byte, contentType, phone, language string) (*Outcome, error) {
	ctx, span := triageTracer.Start(ctx, "triage.process")
	defer span.End()

	out := &Outcome{}
	log := s.logger.WithStep("triage")

	// RECEIVED: archive the upload. Storage failure degrades to an empty
	// image reference on the prediction row.
	imageRef := ""
	if s.images != nil {
		ref, err := s.images.Save(ctx, imageBytes, contentType)
		if err != nil {
			s.recordStep(out, log, StepReceived, err)
		} else {
			imageRef = ref
			s.recordStep(out, log, StepReceived, nil)
		}
	} else {
		s.skipStep(out, log, StepReceived, "no image store configured")
	}

	// CLASSIFIED: the only fatal step.
	result, err := s.classify(ctx, imageBytes)
	if err != nil {
		s.recordStep(out, log, StepClassified, err)
		span.RecordError(err)
		return nil, err
	}
	out.Result = result
	out.Actionable = s.policy.Actionable(result.Label, result.Probability)
	s.recordStep(out, log, StepClassified, nil)
	s.metrics.ObservePrediction(result.Label, out.Actionable)
	span.SetAttributes(
		attribute.String("dermassist.label", result.Label),
		attribute.Float64("dermassist.probability", result.Probability),
		attribute.Bool("dermassist.actionable", out.Actionable),
	)

	// PERSISTED: the prediction row is always written, actionable or not.
	pred := &predictions.Prediction{
		ImageRef:    imageRef,
		Label:       result.Label,
		Probability: result.Probability,
	}
	if user != nil {
		pred.UserID = user.ID
	}
	if s.predictions != nil {
		saved, err := s.predictions.Create(ctx, pred)
		if err != nil {
			s.recordStep(out, log, StepPersisted, err)
		} else {
			out.Prediction = saved
			s.recordStep(out, log, StepPersisted, nil)
		}
	} else {
		s.skipStep(out, log, StepPersisted, "no prediction repository configured")
	}

	if !out.Actionable {
		return out, nil
	}

	// APPOINTMENT_CREATED
	appt := appointments.New(user, phone, language)
	s.recordStep(out, log, StepAppointmentCreated, nil)

	// HOSPITAL_ATTEMPTED: failure is caught, the appointment simply carries
	// no reference.
	s.attemptBooking(ctx, out, log, &appt)

	// Persist with or without the reference.
	if s.appointments != nil {
		saved, err := s.appointments.Create(ctx, &appt)
		if err != nil {
			s.recordStep(out, log, StepAppointmentPersisted, err)
			out.Appointment = &appt
		} else {
			out.Appointment = saved
			s.recordStep(out, log, StepAppointmentPersisted, nil)
		}
	} else {
		out.Appointment = &appt
		s.skipStep(out, log, StepAppointmentPersisted, "no appointment repository configured")
	}

	// NOTIFIED: both channels, each independently best effort.
	if s.notifier != nil {
		s.notifier.NotifyByVoice(ctx, out.Appointment)
		s.notifier.NotifyByMessaging(ctx, out.Appointment)
		s.recordStep(out, log, StepNotified, nil)
	} else {
		s.skipStep(out, log, StepNotified, "no notifier configured")
	}

	return out, nil
}

// classify decodes and classifies the image, consulting the result cache
// first. The same bytes against the same model version always yield the same
// result, so hits skip inference.
func (s *Service) classify(ctx context.Context, imageBytes []byte) (*classifier.Result, error) {
	if s.classifier == nil {
		return nil, classifier.ErrModelNotLoaded
	}

	version := s.classifier.ModelVersion()
	key := predictions.Key(imageBytes, version)
	if cached := s.cache.Get(ctx, key); cached != nil {
		s.logger.Debug("classification served from cache", "label", cached.Label)
		return &classifier.Result{
			Label:        cached.Label,
			Probability:  cached.Probability,
			Index:        cached.Index,
			ModelVersion: version,
		}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("triage: decode image: %w", err)
	}

	result, err := s.classifier.Predict(ctx, img)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, key, predictions.CachedResult{
		Label:       result.Label,
		Probability: result.Probability,
		Index:       result.Index,
	})
	return result, nil
}

func (s *Service) attemptBooking(ctx context.Context, out *Outcome, log *logging.Logger, appt *appointments.Appointment) {
	if s.hospital == nil {
		s.skipStep(out, log, StepHospitalAttempted, "no hospital endpoint configured")
		return
	}

	start := time.Now()
	result, err := s.hospital.Book(ctx, appt)
	s.metrics.ObserveHospitalLatency(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, hospital.ErrNotConfigured) {
			s.skipStep(out, log, StepHospitalAttempted, "no hospital endpoint configured")
			return
		}
		s.recordStep(out, log, StepHospitalAttempted, err)
		return
	}
	appt.HospitalReference = result.Reference
	s.recordStep(out, log, StepHospitalAttempted, nil)
}

func (s *Service) recordStep(out *Outcome, log *logging.Logger, step string, err error) {
	if err == nil {
		out.Steps = append(out.Steps, StepResult{Step: step, Status: StepOK})
		log.Info("triage step ok", "triage_step", step)
		return
	}
	out.Steps = append(out.Steps, StepResult{Step: step, Status: StepDegraded, Err: err.Error()})
	log.Error("triage step degraded", "triage_step", step, "error", err)
	s.metrics.ObserveStepFailure(step)
}

func (s *Service) skipStep(out *Outcome, log *logging.Logger, step, reason string) {
	out.Steps = append(out.Steps, StepResult{Step: step, Status: StepSkipped, Err: reason})
	log.Info("triage step skipped", "triage_step", step, "reason", reason)
}
