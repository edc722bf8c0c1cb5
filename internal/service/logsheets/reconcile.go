package logsheets

import (
	"context"
	"slices"

	"github.com/geocoder89/drivingschool/internal/domain/logsheet"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/repo"
)

// Reconcile repairs drift between user id lists and logsheet rows:
//   - a row its owner does not list is appended to the owner's list,
//   - a row whose owner no longer exists is deleted,
//   - a listed id with no row is stripped from the list.
//
// User rows are locked first so uploads and deletes for those users wait, and
// lists are changed one id at a time rather than rewritten.
func (s *Service) Reconcile(ctx context.Context) (logsheet.ReconcileReport, error) {
	var report logsheet.ReconcileReport

	err := s.store.InTx(ctx, func(ctx context.Context, users repo.Users, sheets repo.Logsheets) error {
		report = logsheet.ReconcileReport{}

		allUsers, err := users.List(ctx, user.ListFilter{ForUpdate: true})
		if err != nil {
			return err
		}

		rows, err := sheets.ListAll(ctx)
		if err != nil {
			return err
		}

		byUsername := make(map[string]user.User, len(allUsers))
		for _, u := range allUsers {
			byUsername[u.Username] = u
		}

		rowIDs := make(map[string]struct{}, len(rows))
		for _, l := range rows {
			rowIDs[l.ID] = struct{}{}
		}

		for _, u := range allUsers {
			for _, id := range u.Logsheet {
				if _, ok := rowIDs[id]; ok {
					continue
				}
				if err := users.RemoveLogsheet(ctx, u.ID, id); err != nil {
					return err
				}
				report.StrippedIDs++
			}
		}

		for _, l := range rows {
			owner, ok := byUsername[l.Username]
			if !ok {
				// the owner may have registered after the lock was taken
				exists, err := users.UsernameInUse(ctx, l.Username)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				if err := sheets.Delete(ctx, l.ID); err != nil {
					return err
				}
				report.DeletedOrphans++
				continue
			}

			if slices.Contains(owner.Logsheet, l.ID) {
				continue
			}
			if err := users.AppendLogsheet(ctx, owner.ID, l.ID); err != nil {
				return err
			}
			report.Relinked++
		}

		return nil
	})

	if err != nil {
		return logsheet.ReconcileReport{}, wrap(err, "Something went wrong while reconciling logsheets")
	}

	if !report.Empty() {
		s.logger.InfoContext(ctx, "logsheets reconciled",
			"relinked", report.Relinked,
			"deleted_orphans", report.DeletedOrphans,
			"stripped_ids", report.StrippedIDs,
		)
	}

	return report, nil
}
