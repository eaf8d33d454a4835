package domain

import "context"

// NodeRepository defines the interface for the persisted node hierarchy
// (the tree store). Implementations return nodes ordered by sibling
// order, then id.
type NodeRepository interface {
	// ListActiveNodes returns the full flat set of active nodes.
	ListActiveNodes(ctx context.Context) ([]*Node, error)

	// GetNode retrieves a node by its ID. Returns nil when absent.
	GetNode(ctx context.Context, id string) (*Node, error)

	// CreateNode persists a new node
	CreateNode(ctx context.Context, node *Node) error

	// UpdateNode updates name, type, order and active flag
	UpdateNode(ctx context.Context, node *Node) error

	// SetNodeParent reassigns a node's parent. An empty parentID makes
	// the node a root. Acyclicity is validated by the caller before this
	// is invoked.
	SetNodeParent(ctx context.Context, id, parentID string) error

	// ReorderNodes applies new sibling orders in one statement batch
	ReorderNodes(ctx context.Context, orders []NodeOrder) error

	// DeleteNode removes a node. The caller enforces the policy that a
	// node with children or attached resources cannot be deleted.
	DeleteNode(ctx context.Context, id string) error

	// CountChildren returns the number of direct children of a node
	CountChildren(ctx context.Context, id string) (int, error)
}

// NodeOrder pairs a node id with its new sibling order.
type NodeOrder struct {
	NodeID string
	Order  int
}

// ResourceRepository defines the interface for persisted resources and
// their program context tags.
type ResourceRepository interface {
	// ListResourcesFor returns the resources attached to a node,
	// optionally filtered by type and context name, ordered by sibling
	// order then id.
	ListResourcesFor(ctx context.Context, nodeID string, filter ResourceFilter) ([]*Resource, error)

	// CountResourcesByNode returns the number of directly attached
	// resources per node id, for every node that has any.
	CountResourcesByNode(ctx context.Context) (map[string]int, error)

	// GetResource retrieves a resource by its ID. Returns nil when absent.
	GetResource(ctx context.Context, id string) (*Resource, error)

	CreateResource(ctx context.Context, resource *Resource) error
	UpdateResource(ctx context.Context, resource *Resource) error
	DeleteResource(ctx context.Context, id string) error

	// ListContexts returns all program context tags
	ListContexts(ctx context.Context) ([]*ProgramContext, error)

	// CreateContext persists a new program context tag
	CreateContext(ctx context.Context, pc *ProgramContext) error
}

// ResourceFilter narrows a resource listing. Zero values mean no filter.
type ResourceFilter struct {
	ResourceType ResourceType
	ContextName  string // case-insensitive substring match on tag name
}

// QuizRepository defines the interface for persisted quizzes, attempts
// and progress records.
type QuizRepository interface {
	// GetQuizByID retrieves a quiz with its nested questions and options.
	// Returns nil when absent.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)

	// GetQuizByResourceID retrieves the quiz attached to a resource.
	// Returns nil when absent.
	GetQuizByResourceID(ctx context.Context, resourceID string) (*Quiz, error)

	// CreateQuiz persists a quiz together with its nested questions and
	// options.
	CreateQuiz(ctx context.Context, quiz *Quiz) error

	// GetAttemptCount returns how many attempts exist for the
	// (user, quiz) pair.
	GetAttemptCount(ctx context.Context, userID, quizID string) (int, error)

	// CreateAttempt persists a scored attempt and its responses.
	CreateAttempt(ctx context.Context, attempt *Attempt) error

	// ListAttemptsByUser returns a user's attempts, most recent first.
	ListAttemptsByUser(ctx context.Context, userID string) ([]*Attempt, error)

	// UpsertProgress records completion of the resource backing a quiz.
	UpsertProgress(ctx context.Context, progress *StudentProgress) error
}

// TransactionManager runs a function inside a database transaction. The
// transaction is carried through the context so repositories participate
// transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
