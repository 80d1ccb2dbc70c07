package repository

import (
	"context"
	"errors"

	"github.com/akzente/fieldops/internal/ops/entity"
	"gorm.io/gorm"
)

// ProjectRepository persists projects, branches, users and memberships. It
// also serves as the directory collaborator for recipient resolution.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID looks up a project.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create inserts a project.
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// ListAll returns all projects.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListForUser returns the projects a user is assigned to, via membership.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Where("id IN (SELECT project_id FROM project_members WHERE user_id = ?)", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListBranches returns a project's branches.
func (r *ProjectRepository) ListBranches(ctx context.Context, projectID string) ([]entity.Branch, error) {
	var branches []entity.Branch
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

// CreateBranch inserts a branch.
func (r *ProjectRepository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

// FindUser looks up a user.
func (r *ProjectRepository) FindUser(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user.
func (r *ProjectRepository) CreateUser(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// AddMember links a user to a project.
func (r *ProjectRepository) AddMember(ctx context.Context, member *entity.ProjectMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// ListMembersByRole returns a project's members holding the given role.
func (r *ProjectRepository) ListMembersByRole(ctx context.Context, projectID, role string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("id IN (SELECT user_id FROM project_members WHERE project_id = ? AND role = ?)", projectID, role).
		Find(&users).Error
	return users, err
}

// Recipients is the resolved notification audience for one report.
type Recipients struct {
	Merchandiser   *entity.User
	AkzenteStaff   *entity.User
	ClientContacts []entity.User
}

// ResolveRecipients resolves the interested parties for a report: the
// assigned merchandiser, the project's akzente staff and the project's
// client contacts. Missing parties are left nil/empty, never an error.
func (r *ProjectRepository) ResolveRecipients(ctx context.Context, report *entity.Report) (*Recipients, error) {
	recipients := &Recipients{}

	if report.MerchandiserID != nil && *report.MerchandiserID != "" {
		if u, err := r.FindUser(ctx, *report.MerchandiserID); err == nil {
			recipients.Merchandiser = u
		}
	}

	project, err := r.FindByID(ctx, report.ProjectID)
	if err != nil {
		return recipients, err
	}
	if project.AkzenteStaffID != nil && *project.AkzenteStaffID != "" {
		if u, err := r.FindUser(ctx, *project.AkzenteStaffID); err == nil {
			recipients.AkzenteStaff = u
		}
	}

	contacts, err := r.ListMembersByRole(ctx, project.ID, entity.RoleClient)
	if err != nil {
		return recipients, err
	}
	recipients.ClientContacts = contacts

	return recipients, nil
}
