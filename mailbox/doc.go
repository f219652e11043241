// Package mailbox provides the filesystem-backed mailbox store.
//
// The filesystem itself is the queue: each agent owns a directory
// pair under the messages root, plus a staging area used only while
// a fetch is archiving consumed envelopes:
//
//	root/
//	└── alice/
//	    ├── inbox/        # pending envelopes and their attachments
//	    ├── done/         # one zip per consumed envelope
//	    └── processing/   # staging for in-flight archive transactions
//
// Envelope filenames sort lexicographically into chronological order,
// which is the delivery order contract. Every operation re-reads
// directory state from disk; there is no caching layer.
//
// The package registers itself with the openack registry under the
// name "mailbox". Import it with a blank identifier to enable it:
//
//	import _ "github.com/openack/openack/mailbox"
//
// Then open a store:
//
//	store, err := openack.Open(openack.StoreConfig{
//	    Type:     "mailbox",
//	    BasePath: "/messages",
//	}, openack.Deps{Directory: dir})
package mailbox
