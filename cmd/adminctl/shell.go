package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"cabbooking/internal/apiclient"
	"cabbooking/internal/console"
	"cabbooking/internal/domain"
	"cabbooking/internal/session"
)

// fareQuoter covers the public fare endpoints used by the quote command.
type fareQuoter interface {
	OutstationFare(ctx context.Context, from, to string, car domain.CarType) (*apiclient.Quote, error)
	LocalFare(ctx context.Context, car domain.CarType, airport bool) (*apiclient.Quote, error)
}

type shell struct {
	mgr   *console.SessionManager
	desk  *console.BookingDesk
	fares fareQuoter
	out   io.Writer
}

func newShell(mgr *console.SessionManager, desk *console.BookingDesk, fares fareQuoter, out io.Writer) *shell {
	return &shell{mgr: mgr, desk: desk, fares: fares, out: out}
}

const helpText = `commands:
  login <email> <password>        sign in
  logout                          sign out
  whoami                          show the session state
  forgot <email>                  request a password reset email
  reset <link>                    open a password reset link
  passwd <new> <confirm>          set a new password
  bookings [status]               list bookings
  show <id>                       show one booking
  confirm <id>                    confirm a pending booking
  complete <id>                   complete a confirmed booking
  cancel <id> [reason]            cancel a booking
  price <id> <amount> [reason]    override the price
  quote outstation <from> <to> <car>
  quote local <car> [airport]
  quit`

// watch reports session changes that did not come from a typed command,
// such as a sign out pushed by the server.
func (s *shell) watch() func() {
	ch := make(chan session.Snapshot, 8)
	stop := s.mgr.Store().Watch(ch)
	done := make(chan struct{})
	go func() {
		last := s.mgr.Store().State()
		for {
			select {
			case snap := <-ch:
				if snap.IsLoading || snap.State == last {
					continue
				}
				if snap.State == session.Anonymous && last == session.Authenticated {
					fmt.Fprintln(s.out, "\nsession ended")
				}
				last = snap.State
			case <-done:
				return
			}
		}
	}()
	return func() {
		stop()
		close(done)
	}
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		if done := s.exec(ctx, strings.Fields(sc.Text())); done {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *shell) prompt() string {
	if u := s.mgr.Store().User(); u != nil {
		return u.Email + "> "
	}
	return "> "
}

// exec runs one command line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		if len(args) != 2 {
			s.usage("login <email> <password>")
			return false
		}
		s.result(s.mgr.SignIn(ctx, args[0], args[1]))
	case "logout":
		s.result(s.mgr.SignOut(ctx))
	case "whoami":
		snap := s.mgr.Store().Snapshot()
		if snap.User == nil {
			fmt.Fprintf(s.out, "state: %s\n", snap.State)
			return false
		}
		fmt.Fprintf(s.out, "state: %s\nuser:  %s (%s)\nexpires: %s\n",
			snap.State, snap.User.Email, snap.User.Role, snap.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	case "forgot":
		if len(args) != 1 {
			s.usage("forgot <email>")
			return false
		}
		s.result(s.mgr.RequestPasswordReset(ctx, args[0]))
	case "reset":
		if len(args) != 1 {
			s.usage("reset <link>")
			return false
		}
		s.result(s.mgr.ExchangeResetLink(ctx, args[0]))
	case "passwd":
		if len(args) != 2 {
			s.usage("passwd <new> <confirm>")
			return false
		}
		s.result(s.mgr.ChangePassword(ctx, args[0], args[1]))
	case "bookings":
		s.listBookings(ctx, args)
	case "show":
		if len(args) != 1 {
			s.usage("show <id>")
			return false
		}
		b, err := s.desk.Get(ctx, args[0])
		s.booking(b, err)
	case "confirm", "complete":
		if len(args) != 1 {
			s.usage(cmd + " <id>")
			return false
		}
		if cmd == "confirm" {
			s.booking(s.desk.Confirm(ctx, args[0]))
		} else {
			s.booking(s.desk.Complete(ctx, args[0]))
		}
	case "cancel":
		if len(args) < 1 {
			s.usage("cancel <id> [reason]")
			return false
		}
		s.booking(s.desk.Cancel(ctx, args[0], strings.Join(args[1:], " ")))
	case "price":
		if len(args) < 2 {
			s.usage("price <id> <amount> [reason]")
			return false
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			fmt.Fprintln(s.out, "amount must be a number")
			return false
		}
		s.booking(s.desk.OverridePrice(ctx, args[0], amount, strings.Join(args[2:], " ")))
	case "quote":
		s.quote(ctx, args)
	default:
		fmt.Fprintf(s.out, "unknown command %q, type help\n", cmd)
	}
	return false
}

func (s *shell) usage(u string) {
	fmt.Fprintln(s.out, "usage:", u)
}

func (s *shell) result(r console.Result) {
	fmt.Fprintln(s.out, r.Message)
	if r.Redirect != "" {
		fmt.Fprintf(s.out, "next: %s\n", r.Redirect)
	}
}

func (s *shell) listBookings(ctx context.Context, args []string) {
	var filter domain.BookingFilter
	if len(args) > 0 {
		st, err := domain.ParseBookingStatus(args[0])
		if err != nil {
			fmt.Fprintln(s.out, console.Message(err))
			return
		}
		filter.Status = st
	}

	list, err := s.desk.List(ctx, filter)
	if err != nil {
		fmt.Fprintln(s.out, console.Message(err))
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(s.out, "no bookings")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSERVICE\tCAR\tWHEN\tCUSTOMER\tPRICE")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%s\t%.2f\n",
			b.ID, b.Status, b.ServiceType, b.CarType, b.TravelDate, b.TravelTime, b.CustomerPhone, b.EstimatedPrice)
	}
	_ = tw.Flush()
}

func (s *shell) booking(b *domain.Booking, err error) {
	if err != nil {
		fmt.Fprintln(s.out, console.Message(err))
		return
	}
	fmt.Fprintf(s.out, "%s  %s  %s %s -> %s  %s %s  %.2f\n",
		b.ID, b.Status, b.ServiceType, b.FromLocation, b.ToLocation, b.TravelDate, b.TravelTime, b.EstimatedPrice)
	if b.OriginalPrice != nil {
		fmt.Fprintf(s.out, "  price overridden from %.2f: %s\n", *b.OriginalPrice, b.PriceOverrideReason)
	}
	if b.CancellationReason != "" {
		fmt.Fprintf(s.out, "  cancelled: %s\n", b.CancellationReason)
	}
}

func (s *shell) quote(ctx context.Context, args []string) {
	var (
		q   *apiclient.Quote
		err error
	)
	switch {
	case len(args) == 4 && args[0] == "outstation":
		q, err = s.fares.OutstationFare(ctx, args[1], args[2], domain.CarType(args[3]))
	case (len(args) == 2 || len(args) == 3) && args[0] == "local":
		airport := len(args) == 3 && args[2] == "airport"
		q, err = s.fares.LocalFare(ctx, domain.CarType(args[1]), airport)
	default:
		s.usage("quote outstation <from> <to> <car> | quote local <car> [airport]")
		return
	}
	if err != nil {
		fmt.Fprintln(s.out, console.Message(err))
		return
	}
	fmt.Fprintf(s.out, "%.2f\n", q.Price)
}
