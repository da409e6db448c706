package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"billhub/internal/billview"
	"billhub/internal/content"
	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/middleware/metrics"
	"billhub/internal/services"
)

// billRow is one bill as the list and home cards show it.
type billRow struct {
	ID       string
	Category core.Category
	Title    string
	Amount   string
	Paid     bool
	Due      string
	Month    string
	Year     string
	Selected bool
	PayURL   string
}

type homePage struct {
	page
	DisplayName string
	Cards       []billRow
	Ads         []content.Ad
	Notice      *content.Announcement
}

type option struct {
	Value, Label string
	Selected     bool
}

type billsPage struct {
	page
	Service  core.Category
	Title    string
	Rows     []billRow
	Months   []option
	Years    []option
	Statuses []option
	Sorts    []option
	Query    string
}

type payPage struct {
	page
	Missing bool
	Service core.Category
	Bill    *billRow
	Methods []option
	Error   string
}

type adsPage struct {
	page
	Ads []content.Ad
}

type announcementsPage struct {
	page
	Items  []content.Announcement
	Detail *content.Announcement
}

func (s *Server) row(p page, b core.Bill) billRow {
	q := url.Values{"billId": {b.ID}, "service": {string(b.Category)}}
	return billRow{
		ID:       b.ID,
		Category: b.Category,
		Title:    p.L.T("type." + string(b.Category)),
		Amount:   p.L.Amount(b.Amount),
		Paid:     b.Status.IsPaid(),
		Due:      billview.FormatDueDate(b.DueDate, s.now()),
		Month:    b.Month,
		Year:     b.Year,
		PayURL:   "/pay?" + q.Encode(),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	data := homePage{page: s.basePage(r), Ads: s.deps.Content.Ads}

	summary, err := s.deps.Bills.Summary(ctx, user.Phone)
	if err != nil {
		s.reqLog(r).ErrorContext(ctx, "Failed to load summary", log.FieldError, err, log.FieldOperation, log.OpRead)
		summary = services.Summary{DisplayName: user.DisplayName()}
	}
	data.DisplayName = summary.DisplayName
	for _, b := range summary.Latest {
		data.Cards = append(data.Cards, s.row(data.page, b))
	}
	if len(s.deps.Content.Announcements) > 0 {
		a := s.deps.Content.Announcements[0]
		data.Notice = &a
	}
	data.HelpURL = s.helpURL(data.L.T("help.msg.home", summary.DisplayName, user.Phone))

	data.Guard = s.installGuard(r)
	s.render(w, r, http.StatusOK, "home.html", data)
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	service := core.CategoryOrDefault(chi.URLParam(r, "service"))
	sel := billview.SelectionFromQuery(r.URL.Query())

	data := billsPage{page: s.basePage(r), Service: service, Query: sel.Query().Encode()}
	data.Title = data.L.T("service." + string(service))

	all, err := s.deps.Bills.Bills(ctx, user.Phone, service)
	if err != nil {
		s.reqLog(r).ErrorContext(ctx, "Failed to load bills", log.FieldError, err, log.FieldService, string(service))
	}
	selected := strings.TrimSpace(r.URL.Query().Get("selected"))
	for _, b := range billview.FilterAndSort(all, sel) {
		row := s.row(data.page, b)
		row.Selected = b.ID == selected
		data.Rows = append(data.Rows, row)
	}

	data.Months = []option{{Value: "", Label: data.L.T("bills.allMonths"), Selected: sel.Month == ""}}
	for m := 1; m <= 12; m++ {
		v := fmt.Sprintf("%02d", m)
		data.Months = append(data.Months, option{Value: v, Label: data.L.Month(v), Selected: billview.PadMonth(sel.Month) == v})
	}
	data.Years = []option{{Value: "", Label: data.L.T("bills.allYears"), Selected: sel.Year == ""}}
	for _, y := range billview.Years(all) {
		data.Years = append(data.Years, option{Value: y, Label: y, Selected: sel.Year == y})
	}
	data.Statuses = []option{
		{Value: string(billview.StatusAll), Label: data.L.T("common.all"), Selected: sel.Status == billview.StatusAll},
		{Value: string(billview.StatusPaid), Label: data.L.T("status.paid"), Selected: sel.Status == billview.StatusPaid},
		{Value: string(billview.StatusUnpaid), Label: data.L.T("status.unpaid"), Selected: sel.Status == billview.StatusUnpaid},
	}
	data.Sorts = []option{
		{Value: string(billview.SortNewest), Label: data.L.T("bills.sort.newest"), Selected: sel.SortBy == billview.SortNewest},
		{Value: string(billview.SortOldest), Label: data.L.T("bills.sort.oldest"), Selected: sel.SortBy == billview.SortOldest},
		{Value: string(billview.SortAmountHigh), Label: data.L.T("bills.sort.amountHigh"), Selected: sel.SortBy == billview.SortAmountHigh},
		{Value: string(billview.SortAmountLow), Label: data.L.T("bills.sort.amountLow"), Selected: sel.SortBy == billview.SortAmountLow},
	}

	billRef := selected
	if billRef == "" {
		billRef = "-"
	}
	data.HelpURL = s.helpURL(data.L.T("help.msg.bills", data.L.T("type."+string(service)), billRef, user.Phone))

	data.Guard = s.installGuard(r)
	s.render(w, r, http.StatusOK, "bills.html", data)
}

func (s *Server) handleRequestBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	service := core.CategoryOrDefault(chi.URLParam(r, "service"))
	l := localizer(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	billID := sanitizeInput(r.PostForm.Get("billId"))
	back := "/bills/" + string(service)
	if q, err := url.ParseQuery(r.PostForm.Get("q")); err == nil {
		if enc := billview.SelectionFromQuery(q).Query().Encode(); enc != "" {
			back += "?" + enc
		}
	}

	_, err := s.deps.Bills.RequestCopy(ctx, user.Phone, service, billID)
	switch {
	case err == nil:
		metrics.RecordBillRequest(string(service), "created")
		s.flash(r, core.NotificationSuccess, l.T("bills.requestSuccess"))
	case errors.Is(err, services.ErrAlreadyRequested):
		metrics.RecordBillRequest(string(service), "duplicate")
		s.flash(r, core.NotificationInfo, l.T("bills.alreadyRequested"))
	case errors.Is(err, services.ErrUserNotFound):
		metrics.RecordBillRequest(string(service), "no_user")
		s.flash(r, core.NotificationError, l.T("bills.userNotFound"))
	default:
		metrics.RecordBillRequest(string(service), "error")
		s.reqLog(r).ErrorContext(ctx, "Bill request failed",
			log.FieldError, err, log.FieldService, string(service), log.FieldBillID, billID)
		s.flash(r, core.NotificationError, l.T("bills.requestError"))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) payMethods(p page, chosen string) []option {
	if chosen == "" {
		chosen = string(services.PayByCard)
	}
	return []option{
		{Value: string(services.PayByCard), Label: p.L.T("pay.method.card"), Selected: chosen == string(services.PayByCard)},
		{Value: string(services.PayByZain), Label: p.L.T("pay.method.zain"), Selected: chosen == string(services.PayByZain)},
	}
}

func (s *Server) handlePayPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	billID := strings.TrimSpace(q.Get("billId"))
	service := core.CategoryOrDefault(q.Get("service"))

	data := payPage{page: s.basePage(r), Service: service}
	data.Methods = s.payMethods(data.page, "")
	data.HelpURL = s.helpURL(data.L.T("help.msg.bills", data.L.T("type."+string(service)), billID, currentUser(ctx).Phone))
	if billID == "" {
		data.Missing = true
		s.render(w, r, http.StatusOK, "pay.html", data)
		return
	}

	b, err := s.deps.Bills.Find(ctx, currentUser(ctx).Phone, service, billID)
	switch {
	case err == nil:
		row := s.row(data.page, b)
		data.Bill = &row
	case errors.Is(err, services.ErrBillNotFound):
		data.Error = data.L.T("pay.billNotFound")
	default:
		s.reqLog(r).ErrorContext(ctx, "Failed to load bill", log.FieldError, err, log.FieldBillID, billID)
		data.Error = data.L.T("pay.failed")
	}
	s.render(w, r, http.StatusOK, "pay.html", data)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := services.PayInput{
		Phone:   currentUser(ctx).Phone,
		Service: string(core.CategoryOrDefault(r.PostForm.Get("service"))),
		BillID:  sanitizeInput(r.PostForm.Get("billId")),
		Method:  services.PaymentMethod(r.PostForm.Get("method")),
	}

	_, err := s.deps.Bills.Pay(ctx, in)
	if err == nil {
		metrics.RecordPayment(string(in.Method), "paid")
		s.flash(r, core.NotificationSuccess, localizer(ctx).T("pay.success"))
		http.Redirect(w, r, "/bills/"+in.Service, http.StatusSeeOther)
		return
	}

	data := payPage{page: s.basePage(r), Service: core.Category(in.Service)}
	data.Methods = s.payMethods(data.page, string(in.Method))
	data.HelpURL = s.helpURL(data.L.T("help.msg.bills", data.L.T("type."+in.Service), in.BillID, in.Phone))
	status := http.StatusUnprocessableEntity
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe) && fe.Field == "BillID":
		data.Missing = true
		status = http.StatusOK
	case errors.Is(err, services.ErrUserNotFound):
		data.Error = data.L.T("pay.userNotFound")
	case errors.Is(err, services.ErrBillNotFound):
		data.Error = data.L.T("pay.billNotFound")
		status = http.StatusNotFound
	default:
		if fe == nil {
			s.reqLog(r).ErrorContext(ctx, "Payment failed", log.FieldError, err, log.FieldBillID, in.BillID)
			status = http.StatusInternalServerError
		}
		data.Error = data.L.T("pay.failed")
	}
	metrics.RecordPayment(string(in.Method), "failed")
	if !data.Missing {
		if b, err := s.deps.Bills.Find(ctx, in.Phone, core.Category(in.Service), in.BillID); err == nil {
			row := s.row(data.page, b)
			data.Bill = &row
		}
	}
	s.render(w, r, status, "pay.html", data)
}

func (s *Server) handleAds(w http.ResponseWriter, r *http.Request) {
	data := adsPage{page: s.basePage(r), Ads: s.deps.Content.Ads}
	data.HelpURL = s.helpURL(data.L.T("help.msg.home", currentUser(r.Context()).DisplayName(), currentUser(r.Context()).Phone))
	s.render(w, r, http.StatusOK, "ads.html", data)
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	data := announcementsPage{page: s.basePage(r), Items: s.deps.Content.Announcements}
	if a, ok := s.deps.Content.Announcement(r.URL.Query().Get("detail")); ok {
		data.Detail = &a
	}
	user := currentUser(r.Context())
	data.HelpURL = s.helpURL(data.L.T("help.msg.home", user.DisplayName(), user.Phone))

	data.Guard = s.installGuard(r)
	s.render(w, r, http.StatusOK, "announcements.html", data)
}
