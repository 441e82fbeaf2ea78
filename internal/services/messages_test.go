package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
)

func TestSendMessageOneRowPerReceiver(t *testing.T) {
	db := newTestDB(t)

	messages, err := SendMessage(db, 1, MessageInput{
		ReceiverIDs: []uint64{2, 3},
		Body:        "standup at ten",
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, uint64(2), messages[0].ReceiverID)
	assert.Equal(t, uint64(3), messages[1].ReceiverID)
	assert.Equal(t, models.MessageText, messages[0].MessageType, "type defaults to text")
	for _, m := range messages {
		assert.False(t, m.IsRead)
		assert.NotZero(t, m.MessageID)
	}
}

func TestSendMessageValidation(t *testing.T) {
	db := newTestDB(t)

	_, err := SendMessage(db, 1, MessageInput{ReceiverIDs: []uint64{2}})
	assert.True(t, types.IsKind(err, types.KindValidation), "empty body")

	_, err = SendMessage(db, 1, MessageInput{Body: "hi"})
	assert.True(t, types.IsKind(err, types.KindValidation), "no receivers")

	badProject := uint64(424242)
	_, err = SendMessage(db, 1, MessageInput{ReceiverIDs: []uint64{2}, Body: "hi", ProjectID: &badProject})
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestListMessagesFilters(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db, 1, 2)

	_, err := SendMessage(db, 1, MessageInput{ReceiverIDs: []uint64{2}, Body: "to two"})
	require.NoError(t, err)
	_, err = SendMessage(db, 3, MessageInput{ReceiverIDs: []uint64{1}, Body: "from three"})
	require.NoError(t, err)
	_, err = SendMessage(db, 1, MessageInput{ReceiverIDs: []uint64{2}, Body: "project talk", ProjectID: &project.ProjectID})
	require.NoError(t, err)
	_, err = SendMessage(db, 3, MessageInput{ReceiverIDs: []uint64{4}, Body: "not mine"})
	require.NoError(t, err)

	all, err := ListMessages(db, 1, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3, "sent or received by user 1")

	two := uint64(2)
	conversation, err := ListMessages(db, 1, &two, nil)
	require.NoError(t, err)
	assert.Len(t, conversation, 2)

	scoped, err := ListMessages(db, 1, nil, &project.ProjectID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "project talk", scoped[0].Body)
}

func TestMarkMessageReadReceiverOnly(t *testing.T) {
	db := newTestDB(t)

	messages, err := SendMessage(db, 1, MessageInput{ReceiverIDs: []uint64{2}, Body: "hi"})
	require.NoError(t, err)
	msg := messages[0]

	_, err = MarkMessageRead(db, msg.MessageID, 1)
	assert.True(t, types.IsKind(err, types.KindPermission), "the sender cannot mark it read")

	read, err := MarkMessageRead(db, msg.MessageID, 2)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	first := *read.ReadAt

	// Idempotent: the timestamp does not move.
	again, err := MarkMessageRead(db, msg.MessageID, 2)
	require.NoError(t, err)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, first.Unix(), again.ReadAt.Unix())

	_, err = MarkMessageRead(db, 9999, 2)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}
