package services

import (
	"errors"

	"github.com/samber/lo"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/gorm"
)

// FolderInput carries the fields accepted on folder creation.
type FolderInput struct {
	Name           string
	ParentFolderID *uint64
	Description    string
	Color          string
	Icon           string
}

// FolderPatch carries partial folder edits; nil fields are left untouched.
type FolderPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// FolderNode is a folder with its nested children, for tree responses.
type FolderNode struct {
	models.Folder
	Children []*FolderNode `json:"children"`
}

// GetFolder fetches one folder or a NotFound error.
func GetFolder(db *gorm.DB, id uint64) (*models.Folder, error) {
	var folder models.Folder
	if err := db.First(&folder, "folder_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("folder %d not found", id)
		}
		return nil, err
	}
	return &folder, nil
}

// projectRoot returns the protected root: the earliest nil-parent folder of
// the project, created together with the project itself.
func projectRoot(db *gorm.DB, projectID uint64) (*models.Folder, error) {
	var root models.Folder
	err := db.Where("project_id = ? AND parent_folder_id IS NULL", projectID).
		Order("folder_id ASC").
		First(&root).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("project %d has no root folder", projectID)
		}
		return nil, err
	}
	return &root, nil
}

// siblingNameTaken checks the duplicate-name rule within one parent group.
// Comparison is case-sensitive exact match. excludeID skips the folder being
// renamed.
func siblingNameTaken(db *gorm.DB, projectID uint64, parentID *uint64, name string, excludeID uint64) (bool, error) {
	q := db.Model(&models.Folder{}).
		Where("project_id = ? AND name = ?", projectID, name)
	if parentID == nil {
		q = q.Where("parent_folder_id IS NULL")
	} else {
		q = q.Where("parent_folder_id = ?", *parentID)
	}
	if excludeID != 0 {
		q = q.Where("folder_id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateFolder inserts a folder, rejecting duplicate sibling names. A nil
// parent creates another top-level folder; only the folder created with the
// project is the protected root.
func CreateFolder(db *gorm.DB, projectID, createdBy uint64, in FolderInput) (*models.Folder, error) {
	if in.Name == "" {
		return nil, types.Validation("folder name is required")
	}
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}

	if in.ParentFolderID != nil {
		parent, err := GetFolder(db, *in.ParentFolderID)
		if err != nil {
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, types.Validation("parent folder %d belongs to another project", *in.ParentFolderID)
		}
	}

	taken, err := siblingNameTaken(db, projectID, in.ParentFolderID, in.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, types.Conflict("a folder named %q already exists here", in.Name)
	}

	folder := models.Folder{
		ProjectID:      projectID,
		Name:           in.Name,
		ParentFolderID: in.ParentFolderID,
		Description:    in.Description,
		Color:          in.Color,
		Icon:           in.Icon,
		CreatedBy:      createdBy,
	}
	if err := db.Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// UpdateFolder renames or edits a folder, keeping the sibling-name rule
// against its current parent group, excluding itself.
func UpdateFolder(db *gorm.DB, id uint64, patch FolderPatch) (*models.Folder, error) {
	folder, err := GetFolder(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, types.Validation("folder name cannot be empty")
		}
		taken, err := siblingNameTaken(db, folder.ProjectID, folder.ParentFolderID, *patch.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, types.Conflict("a folder named %q already exists here", *patch.Name)
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.Icon != nil {
		updates["icon"] = *patch.Icon
	}

	if len(updates) > 0 {
		if err := db.Model(folder).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return GetFolder(db, id)
}

// MoveFolder re-parents a folder. Rejected when the new parent is the folder
// itself or any of its descendants. The ancestor walk is iterative and
// bounded by the project's folder count, so a pre-existing corrupt cycle
// surfaces as an error instead of an endless loop.
func MoveFolder(db *gorm.DB, id uint64, newParentID *uint64) error {
	folder, err := GetFolder(db, id)
	if err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == id {
			return types.Conflict("folder cannot be its own parent")
		}

		newParent, err := GetFolder(db, *newParentID)
		if err != nil {
			return err
		}
		if newParent.ProjectID != folder.ProjectID {
			return types.Validation("target folder %d belongs to another project", *newParentID)
		}

		isDescendant, err := wouldCreateCycle(db, folder.ProjectID, id, newParent)
		if err != nil {
			return err
		}
		if isDescendant {
			return types.Conflict("folder %d cannot move under its own descendant %d", id, *newParentID)
		}
	}

	taken, err := siblingNameTaken(db, folder.ProjectID, newParentID, folder.Name, id)
	if err != nil {
		return err
	}
	if taken {
		return types.Conflict("a folder named %q already exists at the destination", folder.Name)
	}

	return db.Model(folder).Update("parent_folder_id", newParentID).Error
}

// wouldCreateCycle walks upward from the proposed parent. Seeing folderID
// means the target sits in the folder's subtree. The walk is capped at the
// project's total folder count; exceeding the cap means the stored tree
// already contains a cycle.
func wouldCreateCycle(db *gorm.DB, projectID, folderID uint64, start *models.Folder) (bool, error) {
	var total int64
	if err := db.Model(&models.Folder{}).
		Where("project_id = ?", projectID).
		Count(&total).Error; err != nil {
		return false, err
	}

	current := start
	for steps := int64(0); ; steps++ {
		if steps > total {
			return false, types.Dependency("folder hierarchy of project %d is corrupted (cycle detected)", projectID)
		}
		if current.FolderID == folderID {
			return true, nil
		}
		if current.ParentFolderID == nil {
			return false, nil
		}
		next, err := GetFolder(db, *current.ParentFolderID)
		if err != nil {
			return false, err
		}
		current = next
	}
}

// DeleteFolder removes a folder. The project root is never deletable. A
// non-empty folder requires force; forcing re-parents child folders and
// contained documents up one level (to the deleted folder's own parent),
// never deleting contents recursively.
func DeleteFolder(db *gorm.DB, id uint64, force bool) error {
	folder, err := GetFolder(db, id)
	if err != nil {
		return err
	}

	root, err := projectRoot(db, folder.ProjectID)
	if err == nil && root.FolderID == id {
		return types.Conflict("the project root folder cannot be deleted")
	}

	var childCount, docCount int64
	if err := db.Model(&models.Folder{}).
		Where("parent_folder_id = ?", id).
		Count(&childCount).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Document{}).
		Where("folder_id = ?", id).
		Count(&docCount).Error; err != nil {
		return err
	}

	if (childCount > 0 || docCount > 0) && !force {
		return types.Conflict("folder %d is not empty; pass force to re-parent its contents", id)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Folder{}).
			Where("parent_folder_id = ?", id).
			Update("parent_folder_id", folder.ParentFolderID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).
			Where("folder_id = ?", id).
			Update("folder_id", folder.ParentFolderID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Folder{}, "folder_id = ?", id).Error
	})
}

// BuildFolderTree fetches the project's folders flat and nests them starting
// from the nil-parent level. Sibling order is creation order.
func BuildFolderTree(db *gorm.DB, projectID uint64) ([]*FolderNode, error) {
	if _, err := GetProject(db, projectID); err != nil {
		return nil, err
	}

	var folders []models.Folder
	if err := db.Where("project_id = ?", projectID).
		Order("folder_id ASC").
		Find(&folders).Error; err != nil {
		return nil, err
	}

	byParent := lo.GroupBy(folders, func(f models.Folder) uint64 {
		if f.ParentFolderID != nil {
			return *f.ParentFolderID
		}
		return 0
	})

	var build func(parentKey uint64) []*FolderNode
	build = func(parentKey uint64) []*FolderNode {
		nodes := make([]*FolderNode, 0, len(byParent[parentKey]))
		for _, f := range byParent[parentKey] {
			nodes = append(nodes, &FolderNode{
				Folder:   f,
				Children: build(f.FolderID),
			})
		}
		return nodes
	}

	return build(0), nil
}
