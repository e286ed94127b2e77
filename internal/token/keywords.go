package token

var keywords = map[string]Kind{
	"declare":                KwDeclare,
	"define":                 KwDefine,
	"global":                 KwGlobal,
	"constant":               KwConstant,
	"alias":                  KwAlias,
	"type":                   KwType,
	"opaque":                 KwOpaque,
	"module":                 KwModule,
	"asm":                    KwAsm,
	"target":                 KwTarget,
	"triple":                 KwTriple,
	"datalayout":             KwDatalayout,
	"deplibs":                KwDeplibs,
	"attributes":             KwAttributes,
	"sideeffect":             KwSideeffect,
	"alignstack":             KwAlignstack,
	"inteldialect":           KwInteldialect,
	"private":                KwPrivate,
	"linker_private":         KwLinkerPrivate,
	"linker_private_weak":    KwLinkerPrivateWeak,
	"internal":               KwInternal,
	"weak":                   KwWeak,
	"weak_odr":               KwWeakOdr,
	"linkonce":               KwLinkonce,
	"linkonce_odr":           KwLinkonceOdr,
	"linkonce_odr_auto_hide": KwLinkonceOdrAutoHide,
	"available_externally":   KwAvailableExternally,
	"appending":              KwAppending,
	"dllexport":              KwDllexport,
	"common":                 KwCommon,
	"dllimport":              KwDllimport,
	"extern_weak":            KwExternWeak,
	"external":               KwExternal,
	"default":                KwDefault,
	"hidden":                 KwHidden,
	"protected":              KwProtected,
	"thread_local":           KwThreadLocal,
	"localdynamic":           KwLocaldynamic,
	"initialexec":            KwInitialexec,
	"localexec":              KwLocalexec,
	"unnamed_addr":           KwUnnamedAddr,
	"externally_initialized": KwExternallyInitialized,
	"addrspace":              KwAddrspace,
	"section":                KwSection,
	"align":                  KwAlign,
	"gc":                     KwGc,
	"zeroext":                KwZeroext,
	"signext":                KwSignext,
	"inreg":                  KwInreg,
	"byval":                  KwByval,
	"sret":                   KwSret,
	"nest":                   KwNest,
	"noalias":                KwNoalias,
	"nocapture":              KwNocapture,
	"readnone":               KwReadnone,
	"readonly":               KwReadonly,
	"returned":               KwReturned,
	"alwaysinline":           KwAlwaysinline,
	"builtin":                KwBuiltin,
	"cold":                   KwCold,
	"inlinehint":             KwInlinehint,
	"minsize":                KwMinsize,
	"naked":                  KwNaked,
	"nobuiltin":              KwNobuiltin,
	"noduplicate":            KwNoduplicate,
	"noimplicitfloat":        KwNoimplicitfloat,
	"noinline":               KwNoinline,
	"nonlazybind":            KwNonlazybind,
	"noredzone":              KwNoredzone,
	"noreturn":               KwNoreturn,
	"nounwind":               KwNounwind,
	"optsize":                KwOptsize,
	"returns_twice":          KwReturnsTwice,
	"ssp":                    KwSsp,
	"sspreq":                 KwSspreq,
	"sspstrong":              KwSspstrong,
	"sanitize_address":       KwSanitizeAddress,
	"sanitize_thread":        KwSanitizeThread,
	"sanitize_memory":        KwSanitizeMemory,
	"uwtable":                KwUwtable,
	"ccc":                    KwCcc,
	"fastcc":                 KwFastcc,
	"coldcc":                 KwColdcc,
	"x86_stdcallcc":          KwX86Stdcallcc,
	"x86_fastcallcc":         KwX86Fastcallcc,
	"x86_thiscallcc":         KwX86Thiscallcc,
	"arm_apcscc":             KwArmApcscc,
	"arm_aapcscc":            KwArmAapcscc,
	"arm_aapcs_vfpcc":        KwArmAapcsVfpcc,
	"msp430_intrcc":          KwMsp430Intrcc,
	"ptx_kernel":             KwPtxKernel,
	"ptx_device":             KwPtxDevice,
	"spir_kernel":            KwSpirKernel,
	"spir_func":              KwSpirFunc,
	"intel_ocl_bicc":         KwIntelOclBicc,
	"x86_64_sysvcc":          KwX8664Sysvcc,
	"x86_64_win64cc":         KwX8664Win64cc,
	"cc":                     KwCc,
	"true":                   KwTrue,
	"false":                  KwFalse,
	"null":                   KwNull,
	"undef":                  KwUndef,
	"zeroinitializer":        KwZeroinitializer,
	"c":                      KwC,
	"blockaddress":           KwBlockaddress,
	"to":                     KwTo,
	"x":                      KwX,
	"nuw":                    KwNuw,
	"nsw":                    KwNsw,
	"exact":                  KwExact,
	"inbounds":               KwInbounds,
	"tail":                   KwTail,
	"volatile":               KwVolatile,
	"atomic":                 KwAtomic,
	"singlethread":           KwSinglethread,
	"unordered":              KwUnordered,
	"monotonic":              KwMonotonic,
	"acquire":                KwAcquire,
	"release":                KwRelease,
	"acq_rel":                KwAcqRel,
	"seq_cst":                KwSeqCst,
	"nnan":                   KwNnan,
	"ninf":                   KwNinf,
	"nsz":                    KwNsz,
	"arcp":                   KwArcp,
	"fast":                   KwFast,
	"eq":                     KwEq,
	"ne":                     KwNe,
	"slt":                    KwSlt,
	"sgt":                    KwSgt,
	"sle":                    KwSle,
	"sge":                    KwSge,
	"ult":                    KwUlt,
	"ugt":                    KwUgt,
	"ule":                    KwUle,
	"uge":                    KwUge,
	"oeq":                    KwOeq,
	"one":                    KwOne,
	"olt":                    KwOlt,
	"ogt":                    KwOgt,
	"ole":                    KwOle,
	"oge":                    KwOge,
	"ord":                    KwOrd,
	"uno":                    KwUno,
	"ueq":                    KwUeq,
	"une":                    KwUne,
	"add":                    KwAdd,
	"fadd":                   KwFadd,
	"sub":                    KwSub,
	"fsub":                   KwFsub,
	"mul":                    KwMul,
	"fmul":                   KwFmul,
	"udiv":                   KwUdiv,
	"sdiv":                   KwSdiv,
	"fdiv":                   KwFdiv,
	"urem":                   KwUrem,
	"srem":                   KwSrem,
	"frem":                   KwFrem,
	"shl":                    KwShl,
	"lshr":                   KwLshr,
	"ashr":                   KwAshr,
	"and":                    KwAnd,
	"or":                     KwOr,
	"xor":                    KwXor,
	"icmp":                   KwIcmp,
	"fcmp":                   KwFcmp,
	"phi":                    KwPhi,
	"call":                   KwCall,
	"trunc":                  KwTrunc,
	"zext":                   KwZext,
	"sext":                   KwSext,
	"fptrunc":                KwFptrunc,
	"fpext":                  KwFpext,
	"uitofp":                 KwUitofp,
	"sitofp":                 KwSitofp,
	"fptoui":                 KwFptoui,
	"fptosi":                 KwFptosi,
	"inttoptr":               KwInttoptr,
	"ptrtoint":               KwPtrtoint,
	"bitcast":                KwBitcast,
	"select":                 KwSelect,
	"va_arg":                 KwVaArg,
	"ret":                    KwRet,
	"br":                     KwBr,
	"switch":                 KwSwitch,
	"indirectbr":             KwIndirectbr,
	"invoke":                 KwInvoke,
	"resume":                 KwResume,
	"unreachable":            KwUnreachable,
	"alloca":                 KwAlloca,
	"load":                   KwLoad,
	"store":                  KwStore,
	"fence":                  KwFence,
	"cmpxchg":                KwCmpxchg,
	"atomicrmw":              KwAtomicrmw,
	"getelementptr":          KwGetelementptr,
	"extractelement":         KwExtractelement,
	"insertelement":          KwInsertelement,
	"shufflevector":          KwShufflevector,
	"extractvalue":           KwExtractvalue,
	"insertvalue":            KwInsertvalue,
	"landingpad":             KwLandingpad,
	"xchg":                   KwXchg,
	"nand":                   KwNand,
	"max":                    KwMax,
	"min":                    KwMin,
	"umax":                   KwUmax,
	"umin":                   KwUmin,
	"personality":            KwPersonality,
	"cleanup":                KwCleanup,
	"catch":                  KwCatch,
	"filter":                 KwFilter,
	"unwind":                 KwUnwind,
}

var keywordNames = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for text, k := range keywords {
		out[k] = text
	}
	return out
}()

// LookupKeyword returns the keyword kind for an identifier-like lexeme.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool {
	return k > keywordBeg && k < keywordEnd
}
