package status

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"vigil/pkg/health"
	"vigil/pkg/log"
	"vigil/pkg/runtime"
	"vigil/pkg/systemd"
	"vigil/pkg/types"
)

// UnitInspector reports systemd's view of a vigil unit.
// *systemd.Manager satisfies it.
type UnitInspector interface {
	Status(ctx context.Context, service string) systemd.UnitStatus
}

// Report is a point-in-time operator view of the watched service.
type Report struct {
	Service   string
	Image     string
	Address   string
	Composite health.Composite
	Signal    health.Signal
	Container types.ContainerState
	Unit      systemd.UnitStatus
	LogTail   []string
	CheckedAt time.Time
}

// Reporter assembles status reports. It probes on its own, independent
// of any running monitor loop, so `vigil status` works whether or not
// the service is being supervised.
type Reporter struct {
	rt     runtime.Runtime
	prober *health.Prober
	units  UnitInspector
	logger zerolog.Logger
}

// NewReporter creates a reporter. units may be nil, in which case the
// systemd section of the report stays empty.
func NewReporter(rt runtime.Runtime, prober *health.Prober, units UnitInspector) *Reporter {
	return &Reporter{
		rt:     rt,
		prober: prober,
		units:  units,
		logger: log.WithComponent("status"),
	}
}

// Report gathers everything the operator table shows. Failures of
// individual sources degrade into report fields instead of aborting;
// the returned error is non-nil only when ctx was cancelled.
func (r *Reporter) Report(ctx context.Context, spec types.ServiceSpec) (Report, error) {
	rep := Report{
		Service:   spec.Name,
		Image:     spec.Image,
		Address:   spec.Address(),
		CheckedAt: time.Now(),
	}

	rep.Signal = r.prober.Probe(ctx, spec)
	rep.Composite = rep.Signal.Composite()

	state, err := r.rt.Inspect(ctx, spec.Name)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Inspect for status report failed")
	} else {
		rep.Container = state
	}

	if spec.LogTail > 0 {
		lines, err := r.rt.Logs(ctx, spec.Name, spec.LogTail)
		if err != nil {
			r.logger.Debug().Err(err).Msg("Log tail for status report failed")
		} else {
			rep.LogTail = lines
		}
	}

	if r.units != nil {
		rep.Unit = r.units.Status(ctx, spec.Name)
	}

	return rep, ctx.Err()
}

// Render writes the operator table.
func (r Report) Render(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "SERVICE\t%s\n", r.Service)
	fmt.Fprintf(tw, "IMAGE\t%s\n", r.Image)
	fmt.Fprintf(tw, "STATUS\t%s\n", r.Composite)
	fmt.Fprintf(tw, "CONTAINER\t%s\n", r.Signal.ContainerDetail)
	fmt.Fprintf(tw, "PORT\t%s (%s)\n", r.Address, r.Signal.PortDetail)
	fmt.Fprintf(tw, "RUNTIME HEALTH\t%s\n", r.Signal.RuntimeDetail)
	if r.Container.Running && !r.Container.StartedAt.IsZero() {
		fmt.Fprintf(tw, "UP SINCE\t%s\n", r.Container.StartedAt.Format(time.RFC3339))
	}
	if r.Container.Exists && !r.Container.Running {
		fmt.Fprintf(tw, "EXIT CODE\t%d\n", r.Container.ExitCode)
	}
	fmt.Fprintf(tw, "SYSTEMD UNIT\t%s\n", describeUnit(r.Unit))
	fmt.Fprintf(tw, "CHECKED\t%s\n", r.CheckedAt.Format(time.RFC3339))
	tw.Flush()

	if len(r.LogTail) > 0 {
		fmt.Fprintf(w, "\nRECENT LOGS (%d lines)\n", len(r.LogTail))
		for _, line := range r.LogTail {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func describeUnit(u systemd.UnitStatus) string {
	if !u.Exists {
		return "not installed"
	}

	parts := []string{"installed"}
	if u.Enabled {
		parts = append(parts, "enabled")
	} else {
		parts = append(parts, "disabled")
	}
	if u.Active {
		parts = append(parts, "active")
	} else {
		parts = append(parts, "inactive")
	}
	return strings.Join(parts, ", ")
}
