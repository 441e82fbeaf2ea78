package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
)

func TestCreateFolderSiblingNames(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "Designs", ParentFolderID: &root.FolderID})
	require.NoError(t, err)

	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "Designs", ParentFolderID: &root.FolderID})
	assert.True(t, types.IsKind(err, types.KindConflict), "duplicate sibling name")

	// Case matters.
	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "designs", ParentFolderID: &root.FolderID})
	require.NoError(t, err)

	// Same name under a different parent is fine.
	other, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "Archive", ParentFolderID: &root.FolderID})
	require.NoError(t, err)
	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "Designs", ParentFolderID: &other.FolderID})
	require.NoError(t, err)
}

func TestRootFolderCannotBeDeleted(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	err = DeleteFolder(db, root.FolderID, false)
	assert.True(t, types.IsKind(err, types.KindConflict))
	err = DeleteFolder(db, root.FolderID, true)
	assert.True(t, types.IsKind(err, types.KindConflict), "force does not override root protection")
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	parent, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "parent", ParentFolderID: &root.FolderID})
	require.NoError(t, err)
	child, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "child", ParentFolderID: &parent.FolderID})
	require.NoError(t, err)
	grandchild, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "grandchild", ParentFolderID: &child.FolderID})
	require.NoError(t, err)

	err = MoveFolder(db, parent.FolderID, &parent.FolderID)
	assert.True(t, types.IsKind(err, types.KindConflict), "folder as its own parent")

	err = MoveFolder(db, parent.FolderID, &grandchild.FolderID)
	assert.True(t, types.IsKind(err, types.KindConflict), "moving under a descendant")

	// The rejected moves left the tree untouched.
	unchanged, err := GetFolder(db, parent.FolderID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.ParentFolderID)
	assert.Equal(t, root.FolderID, *unchanged.ParentFolderID)

	// A legal move still works.
	require.NoError(t, MoveFolder(db, grandchild.FolderID, &parent.FolderID))
	moved, err := GetFolder(db, grandchild.FolderID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentFolderID)
	assert.Equal(t, parent.FolderID, *moved.ParentFolderID)
}

func TestMoveFolderDestinationNameConflict(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	a, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "a", ParentFolderID: &root.FolderID})
	require.NoError(t, err)
	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "dup", ParentFolderID: &a.FolderID})
	require.NoError(t, err)
	dup2, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "dup", ParentFolderID: &root.FolderID})
	require.NoError(t, err)

	err = MoveFolder(db, dup2.FolderID, &a.FolderID)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestMoveFolderDetectsCorruptHierarchy(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	// Write a two-folder cycle directly; the service must refuse to loop.
	f1 := models.Folder{ProjectID: project.ProjectID, Name: "f1", CreatedBy: 2}
	require.NoError(t, db.Create(&f1).Error)
	f2 := models.Folder{ProjectID: project.ProjectID, Name: "f2", ParentFolderID: &f1.FolderID, CreatedBy: 2}
	require.NoError(t, db.Create(&f2).Error)
	require.NoError(t, db.Model(&f1).Update("parent_folder_id", f2.FolderID).Error)

	victim, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "victim"})
	require.NoError(t, err)

	err = MoveFolder(db, victim.FolderID, &f1.FolderID)
	assert.True(t, types.IsKind(err, types.KindDependency))
}

func TestDeleteFolderForceReparents(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	middle, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "middle", ParentFolderID: &root.FolderID})
	require.NoError(t, err)
	inner, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "inner", ParentFolderID: &middle.FolderID})
	require.NoError(t, err)
	doc, err := CreateDocument(db, project.ProjectID, 2, DocumentInput{
		Title: "spec sheet", FilePath: "x.pdf", FolderID: &middle.FolderID,
	})
	require.NoError(t, err)

	err = DeleteFolder(db, middle.FolderID, false)
	assert.True(t, types.IsKind(err, types.KindConflict), "non-empty without force")

	require.NoError(t, DeleteFolder(db, middle.FolderID, true))

	movedFolder, err := GetFolder(db, inner.FolderID)
	require.NoError(t, err)
	require.NotNil(t, movedFolder.ParentFolderID)
	assert.Equal(t, root.FolderID, *movedFolder.ParentFolderID)

	movedDoc, err := GetDocument(db, doc.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, movedDoc.FolderID)
	assert.Equal(t, root.FolderID, *movedDoc.FolderID)
}

func TestBuildFolderTree(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)
	root, err := projectRoot(db, project.ProjectID)
	require.NoError(t, err)

	child, err := CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "child", ParentFolderID: &root.FolderID})
	require.NoError(t, err)
	_, err = CreateFolder(db, project.ProjectID, 2, FolderInput{Name: "leaf", ParentFolderID: &child.FolderID})
	require.NoError(t, err)

	tree, err := BuildFolderTree(db, project.ProjectID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.FolderID, tree[0].FolderID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, child.FolderID, tree[0].Children[0].FolderID)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "leaf", tree[0].Children[0].Children[0].Name)
}
