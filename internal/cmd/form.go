package cmd

import (
	"context"
	"os"
	"strings"

	formsapi "google.golang.org/api/forms/v1"

	"github.com/Al3jandr032/gforms-go/internal/gforms"
	"github.com/Al3jandr032/gforms-go/internal/outfmt"
	"github.com/Al3jandr032/gforms-go/internal/ui"
)

// newClient is a stub point for tests.
var newClient = func(ctx context.Context) (*gforms.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return gforms.New(ctx, gforms.FromConfig(cfg))
}

type FormCmd struct {
	Get       FormGetCmd       `cmd:"" name:"get" aliases:"info,show" help:"Get a form"`
	List      FormListCmd      `cmd:"" name:"list" aliases:"ls" help:"List forms (service account only)"`
	Responses FormResponsesCmd `cmd:"" name:"responses" help:"List form responses (service account only)"`
}

type FormGetCmd struct {
	FormID string `arg:"" name:"formId" help:"Form ID"`
}

func (c *FormGetCmd) Run(ctx context.Context) error {
	formID := strings.TrimSpace(c.FormID)
	if formID == "" {
		return usage("empty formId")
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	form, err := client.GetForm(ctx, formID)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"form":     form,
			"edit_url": formEditURL(formID),
		})
	}

	printFormSummary(ui.FromContext(ctx), form, formID)

	return nil
}

type FormListCmd struct{}

func (c *FormListCmd) Run(ctx context.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	list, err := client.ListForms(ctx)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"forms":         list.Forms,
			"nextPageToken": list.NextPageToken,
		})
	}

	u := ui.FromContext(ctx)
	u.Out().Println("FORM_ID\tTITLE")

	for _, form := range list.Forms {
		if form == nil {
			continue
		}

		title := ""
		if form.Info != nil {
			title = form.Info.Title
		}

		u.Out().Printf("%s\t%s", form.FormId, title)
	}

	return nil
}

type FormResponsesCmd struct {
	FormID string `arg:"" name:"formId" help:"Form ID"`
}

func (c *FormResponsesCmd) Run(ctx context.Context) error {
	formID := strings.TrimSpace(c.FormID)
	if formID == "" {
		return usage("empty formId")
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.GetFormResponses(ctx, formID)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(ctx, os.Stdout, map[string]any{
			"form_id":       formID,
			"responses":     resp.Responses,
			"nextPageToken": resp.NextPageToken,
		})
	}

	u := ui.FromContext(ctx)
	u.Out().Println("RESPONSE_ID\tSUBMITTED\tEMAIL")

	for _, item := range resp.Responses {
		if item == nil {
			continue
		}

		submitted := firstNonEmpty(item.LastSubmittedTime, item.CreateTime)
		u.Out().Printf("%s\t%s\t%s", item.ResponseId, submitted, item.RespondentEmail)
	}

	return nil
}

func printFormSummary(u *ui.UI, form *formsapi.Form, fallbackID string) {
	if u == nil || form == nil {
		return
	}

	formID := strings.TrimSpace(form.FormId)
	if formID == "" {
		formID = strings.TrimSpace(fallbackID)
	}

	u.Out().Printf("id\t%s", formID)

	if form.Info != nil {
		if form.Info.Title != "" {
			u.Out().Printf("title\t%s", form.Info.Title)
		}

		if form.Info.Description != "" {
			u.Out().Printf("description\t%s", form.Info.Description)
		}
	}

	if form.ResponderUri != "" {
		u.Out().Printf("responder_uri\t%s", form.ResponderUri)
	}

	u.Out().Printf("edit_url\t%s", formEditURL(formID))
}

func formEditURL(formID string) string {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return ""
	}

	return "https://docs.google.com/forms/d/" + formID + "/edit"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}
